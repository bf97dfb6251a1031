package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

const testKernelSrc = `
extern void *kmalloc(size_t size, int flags);
#define KVER 6
`

const testModuleSrc = `
struct widget {
	int id;
};

int use_widget(struct widget *w) {
	return w->id + KVER;
}
`

// TestRunSlice_WritesFourFiles drives runSlice exactly as cobra would,
// by setting the package-level flag variables the way cobra's Flags()
// binding does, then restoring them, to exercise the RunE function
// directly without going through cobra's own command dispatch.
func TestRunSlice_WritesFourFiles(t *testing.T) {
	kernelDir := t.TempDir()
	moduleDir := t.TempDir()
	outDir := t.TempDir()

	mustWriteFile(t, filepath.Join(kernelDir, "kernel.c"), testKernelSrc)
	mustWriteFile(t, filepath.Join(moduleDir, "driver.c"), testModuleSrc)

	resetSliceFlags(t)
	sliceTargets = []string{"use_widget"}
	sliceKernelSrc = kernelDir
	sliceModuleSrc = moduleDir
	sliceOut = outDir
	sliceNoCache = true

	if err := runSlice(sliceCmd, nil); err != nil {
		t.Fatalf("runSlice: %v", err)
	}

	for _, name := range []string{"module.c", "module.h", "kernel.h", "extern.h"} {
		path := filepath.Join(outDir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("expected %s to be written: %v", name, err)
			continue
		}
		if len(data) == 0 && name == "module.c" {
			t.Errorf("expected module.c to be non-empty")
		}
	}

	moduleC, err := os.ReadFile(filepath.Join(outDir, "module.c"))
	if err != nil {
		t.Fatalf("read module.c: %v", err)
	}
	if indexOf(string(moduleC), "use_widget") == -1 {
		t.Errorf("expected module.c to contain use_widget, got %q", moduleC)
	}
}

// TestRunSlice_SingleFileWritesModuleC guards the §6 requirement that
// --single-file output still be named module.c, not some other name.
func TestRunSlice_SingleFileWritesModuleC(t *testing.T) {
	kernelDir := t.TempDir()
	moduleDir := t.TempDir()
	outDir := t.TempDir()

	mustWriteFile(t, filepath.Join(kernelDir, "kernel.c"), testKernelSrc)
	mustWriteFile(t, filepath.Join(moduleDir, "driver.c"), testModuleSrc)

	resetSliceFlags(t)
	sliceTargets = []string{"use_widget"}
	sliceKernelSrc = kernelDir
	sliceModuleSrc = moduleDir
	sliceOut = outDir
	sliceSingleFile = true
	sliceNoCache = true

	if err := runSlice(sliceCmd, nil); err != nil {
		t.Fatalf("runSlice: %v", err)
	}

	path := filepath.Join(outDir, "module.c")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected module.c to be written: %v", err)
	}
	if indexOf(string(data), "use_widget") == -1 {
		t.Errorf("expected module.c to contain use_widget, got %q", data)
	}
}

func TestRunSlice_MissingTargetIsInputError(t *testing.T) {
	resetSliceFlags(t)
	sliceModuleSrc = t.TempDir()
	sliceKernelSrc = t.TempDir()

	err := runSlice(sliceCmd, nil)
	if exitCode(err) != 2 {
		t.Errorf("expected exit code 2 for a missing --target, got %d (err=%v)", exitCode(err), err)
	}
}

func TestRunSlice_UnknownTargetIsExitCodeTwo(t *testing.T) {
	kernelDir := t.TempDir()
	moduleDir := t.TempDir()
	mustWriteFile(t, filepath.Join(kernelDir, "kernel.c"), testKernelSrc)
	mustWriteFile(t, filepath.Join(moduleDir, "driver.c"), testModuleSrc)

	resetSliceFlags(t)
	sliceTargets = []string{"does_not_exist"}
	sliceKernelSrc = kernelDir
	sliceModuleSrc = moduleDir
	sliceOut = t.TempDir()
	sliceNoCache = true

	err := runSlice(sliceCmd, nil)
	if err == nil {
		t.Fatal("expected an error for an unresolvable target")
	}
	if exitCode(err) != 2 {
		t.Errorf("expected exit code 2, got %d", exitCode(err))
	}
}

// resetSliceFlags resets every slice flag variable to its default
// before a test sets the ones it needs, and restores the defaults
// afterward so tests in this package never leak flag state between
// each other.
func resetSliceFlags(t *testing.T) {
	t.Helper()
	reset := func() {
		sliceTargets = nil
		sliceKernelSrc = ""
		sliceModuleSrc = ""
		sliceOut = "."
		sliceSingleFile = false
		sliceElideBodies = false
		sliceRemoveEnum = false
		sliceNoCache = false
		configPath = ""
	}
	reset()
	t.Cleanup(reset)
}
