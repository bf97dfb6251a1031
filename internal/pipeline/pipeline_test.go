package pipeline

import (
	"strings"
	"testing"

	"github.com/modslice/modslice/internal/cache"
	"github.com/modslice/modslice/internal/emit"
)

const kernelSrc = `
extern void *kmalloc(size_t size, int flags);
#define KVER 6
`

const moduleSrc = `
#define GREETING "hello"

struct widget {
	int id;
};

int use_widget(struct widget *w) {
	return w->id + KVER;
}

void *alloc(void) {
	printk(GREETING);
	return kmalloc(8, 0);
}
`

func TestRun_EndToEndWithoutCache(t *testing.T) {
	req := Request{
		Source:  Source{Kernel: kernelSrc, Module: moduleSrc},
		Targets: []string{"use_widget", "alloc"},
		Options: emit.Options{},
	}

	result, err := Run(req, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(result.Output.ModuleC, "use_widget") {
		t.Errorf("expected module.c to contain use_widget, got %q", result.Output.ModuleC)
	}
	if !strings.Contains(result.Output.ModuleH, "struct widget") {
		t.Errorf("expected module.h to contain struct widget, got %q", result.Output.ModuleH)
	}
	if !strings.Contains(result.Output.KernelMacro, "KVER") {
		t.Errorf("expected the kernel macro bucket to contain KVER, got %q", result.Output.KernelMacro)
	}
	if !strings.Contains(result.Output.Extern, "kmalloc") {
		t.Errorf("expected extern.h to contain kmalloc, got %q", result.Output.Extern)
	}
	if !strings.Contains(result.Output.ModuleMacro, `"hello"`) {
		t.Errorf("expected GREETING's escrowed string literal to be restored in the module macro bucket, got %q", result.Output.ModuleMacro)
	}
}

func TestRun_UnknownTargetFails(t *testing.T) {
	req := Request{
		Source:  Source{Kernel: kernelSrc, Module: moduleSrc},
		Targets: []string{"does_not_exist"},
	}
	if _, err := Run(req, nil); err == nil {
		t.Fatal("expected an error for an unresolvable target")
	}
}

func TestRun_CacheHitReproducesOutput(t *testing.T) {
	dir := t.TempDir()
	c, err := cache.Open(dir)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer c.Close()

	req := Request{
		Source:  Source{Kernel: kernelSrc, Module: moduleSrc},
		Targets: []string{"use_widget"},
	}

	first, err := Run(req, c)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}

	stats, err := c.GetStats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.EntitiesCount == 0 {
		t.Error("expected the first run to populate the entity cache")
	}
	if stats.GraphCount == 0 {
		t.Error("expected the first run to populate the graph cache")
	}

	second, err := Run(req, c)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if first.Output.ModuleC != second.Output.ModuleC {
		t.Errorf("expected a cache hit to reproduce identical module.c output\nfirst:  %q\nsecond: %q", first.Output.ModuleC, second.Output.ModuleC)
	}
}
