package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/modslice/modslice/internal/cache"
	"github.com/modslice/modslice/internal/config"
	"github.com/modslice/modslice/internal/emit"
	"github.com/modslice/modslice/internal/escrow"
	"github.com/modslice/modslice/internal/pipeline"
)

var (
	sliceTargets     []string
	sliceKernelSrc   string
	sliceModuleSrc   string
	sliceOut         string
	sliceSingleFile  bool
	sliceElideBodies bool
	sliceRemoveEnum  bool
	sliceNoCache     bool
)

var sliceCmd = &cobra.Command{
	Use:   "slice",
	Short: "Extract the dependency closure of one or more module functions",
	Long: `slice parses --kernel-src and --module-src, builds the dependency graph
of every macro, typedef, enum, struct, global, declaration, and
function either tree defines, computes the reverse transitive closure
of --target, breaks any cycle left in that closure, and writes the
result to --out as module.c / module.h / kernel.h / extern.h (or one
file with --single-file).`,
	Example: `modslice slice --target probe_init --kernel-src /usr/src/linux --module-src ./driver --out ./slice
modslice slice --target probe_init --target probe_exit --module-src ./driver --kernel-src /usr/src/linux --single-file --out ./slice`,
	RunE: runSlice,
}

func init() {
	sliceCmd.Flags().StringSliceVar(&sliceTargets, "target", nil, "target module function name (repeatable, or comma-separated)")
	sliceCmd.Flags().StringVar(&sliceKernelSrc, "kernel-src", "", "kernel source tree directory")
	sliceCmd.Flags().StringVar(&sliceModuleSrc, "module-src", "", "out-of-tree module source tree directory")
	sliceCmd.Flags().StringVar(&sliceOut, "out", ".", "output directory")
	sliceCmd.Flags().BoolVar(&sliceSingleFile, "single-file", false, "concatenate all output into one file instead of four")
	sliceCmd.Flags().BoolVar(&sliceElideBodies, "elide-bodies", false, "emit non-target function bodies as prototypes only")
	sliceCmd.Flags().BoolVar(&sliceRemoveEnum, "remove-unused-enum-fields", false, "accepted, but enums are emitted unchanged (unreferenced members are not removed)")
	sliceCmd.Flags().BoolVar(&sliceNoCache, "no-cache", false, "disable the memoisation cache for this run")

	rootCmd.AddCommand(sliceCmd)
}

func runSlice(cmd *cobra.Command, args []string) error {
	if len(sliceTargets) == 0 {
		return &InputError{Reason: "--target is required"}
	}
	if sliceModuleSrc == "" {
		return &InputError{Reason: "--module-src is required"}
	}
	if sliceKernelSrc == "" {
		return &InputError{Reason: "--kernel-src is required"}
	}

	cfg, err := loadEffectiveConfig(sliceModuleSrc)
	if err != nil {
		return err
	}

	kernelSrc, err := readArea(sliceKernelSrc)
	if err != nil {
		return err
	}
	moduleSrc, err := readArea(sliceModuleSrc)
	if err != nil {
		return err
	}

	var c *cache.Cache
	if cfg.Cache.Enabled && !sliceNoCache {
		dir := cfg.Cache.Path
		if dir == "" {
			dir = filepath.Join(sliceModuleSrc, config.ConfigDirName)
		}
		opened, err := cache.Open(dir)
		if err != nil {
			return &InputError{Reason: "opening cache at " + dir, Err: err}
		}
		defer opened.Close()
		c = opened
	}

	sentinels := escrow.SentinelsFromStrings(
		cfg.Escrow.CommentSentinel,
		cfg.Escrow.StringSentinel,
		cfg.Escrow.AttributeSentinel,
		cfg.Escrow.MacroLineSentinel,
	)

	opts := emit.Options{
		SingleFile:             sliceSingleFile || cfg.Output.SingleFile,
		ElideNonTargetBodies:   sliceElideBodies || cfg.Output.ElideNonTargetBodies,
		RemoveUnusedEnumFields: sliceRemoveEnum || cfg.Output.RemoveUnusedEnumFields,
	}

	req := pipeline.Request{
		Source:    pipeline.Source{Kernel: kernelSrc, Module: moduleSrc},
		Targets:   sliceTargets,
		Options:   opts,
		Sentinels: &sentinels,
	}

	result, err := pipeline.Run(req, c)
	if err != nil {
		return err
	}

	for _, w := range result.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", w.Message)
	}

	return writeOutput(sliceOut, result.Output, opts.SingleFile)
}

// loadEffectiveConfig loads .modslice/config.yaml starting from
// --config if given, else searching upward from workDir; missing
// config falls back to defaults rather than failing the run.
func loadEffectiveConfig(workDir string) (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.LoadFromPath(configPath)
		if err != nil {
			return nil, &InputError{Reason: "loading config " + configPath, Err: err}
		}
		return cfg, nil
	}
	cfg, err := config.Load(workDir)
	if err != nil {
		return nil, &InputError{Reason: "loading config", Err: err}
	}
	return cfg, nil
}

// writeOutput writes result either as one concatenated file or as the
// four named files, creating outDir if it does not exist.
func writeOutput(outDir string, out *emit.Output, singleFile bool) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return &IOError{Path: outDir, Err: err}
	}

	if singleFile {
		path := filepath.Join(outDir, "module.c")
		if err := os.WriteFile(path, []byte(out.Single), 0644); err != nil {
			return &IOError{Path: path, Err: err}
		}
		fmt.Fprintln(os.Stdout, "wrote", path)
		return nil
	}

	files := []struct {
		name string
		text string
	}{
		{"kernel.h", out.KernelMacro + out.Kernel},
		{"extern.h", out.Extern},
		{"module.h", out.ModuleMacro + out.ModuleH},
		{"module.c", out.ModuleC},
	}
	for _, f := range files {
		path := filepath.Join(outDir, f.name)
		if err := os.WriteFile(path, []byte(f.text), 0644); err != nil {
			return &IOError{Path: path, Err: err}
		}
		fmt.Fprintln(os.Stdout, "wrote", path)
	}
	return nil
}
