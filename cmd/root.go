// cmd/root.go
package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/npupass/compiler/internal/graph"
	"github.com/npupass/compiler/internal/hwcaps"
	"github.com/npupass/compiler/internal/op"
	"github.com/npupass/compiler/internal/pass"
	"github.com/npupass/compiler/internal/shape"
	"github.com/npupass/compiler/internal/sram"
	"github.com/npupass/compiler/internal/strategy"
)

var (
	capsPath               string
	logLevel               string
	enableWinograd         bool
	enableIntermediateComp bool
	forwardEst             bool
	bytesPerElement        uint32
)

var rootCmd = &cobra.Command{
	Use:   "passc",
	Short: "NPU pass-building compiler: strategy selection over a linear MCE/PLE node chain",
}

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Build one pass over a synthetic single-convolution chain and report the outcome",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		caps := hwcaps.DefaultProfile()
		if capsPath != "" {
			loaded, err := hwcaps.LoadProfile(capsPath)
			if err != nil {
				logrus.Fatalf("loading capability profile %s: %v", capsPath, err)
			}
			caps = loaded
		}
		if err := caps.Validate(); err != nil {
			logrus.Fatalf("invalid capability profile: %v", err)
		}

		g := graph.NewGraph()
		tensor := shape.TensorShape{N: 1, H: 16, W: 16, C: 16}
		id := g.Add(graph.Node{
			Kind:          graph.KindMceOperation,
			InputFormat:   shape.NHWCB,
			Format:        shape.NHWCB,
			InputShape:    tensor,
			OutputShape:   tensor,
			InputLocation: shape.LocationDram,
			MceOp:         op.Convolution,
			Algorithm:     op.Direct,
			WeightsFormat: shape.HWIO,
			KernelH:       1,
			KernelW:       1,
			StrideH:       1,
			StrideW:       1,
			MceMultiplier: shape.IdentityMultiplier(),
		})

		alloc := sram.New(caps.SramBytesPerBank())
		allowed := []strategy.Tag{strategy.S0, strategy.S1, strategy.S3, strategy.S4, strategy.S6, strategy.S7}

		outcome := pass.CreateGreedily(pass.CreateParams{
			FindParams: pass.FindParams{
				Graph:             g,
				FirstNode:         id,
				SramAllocator:     alloc,
				Caps:              caps,
				AllowedStrategies: allowed,
				AllowedBlocks:     shape.AllBlockConfigs(),
				EnableWinograd:    enableWinograd,
				BytesPerElement:   bytesPerElement,
			},
			EnableIntermediateCompression: enableIntermediateComp,
			ForwardEst:                    forwardEst,
		})

		switch {
		case outcome.Pass != nil:
			logrus.Infof("pass committed: strategy=%s nodes=%d output_location=%v compression=%v",
				outcome.Pass.StrategyConfig.Strategy, len(outcome.Pass.Nodes),
				outcome.Pass.OutputLocation, outcome.Pass.IntermediateCompression)
		case outcome.HasHint:
			logrus.Infof("no pass yet: graph fix required, kind=%v target=%d", outcome.Hint.Kind, outcome.Hint.Target)
		default:
			logrus.Warn("no pass and no fix available for this node chain")
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	compileCmd.Flags().StringVar(&capsPath, "caps", "", "path to a hardware capability YAML profile (default: built-in profile)")
	compileCmd.Flags().StringVar(&logLevel, "log", "info", "log level (debug, info, warn, error)")
	compileCmd.Flags().BoolVar(&enableWinograd, "winograd", false, "allow Winograd convolution where the kernel supports it")
	compileCmd.Flags().BoolVar(&enableIntermediateComp, "intermediate-compression", false, "allow FCAF compression of DRAM-bound intermediate outputs")
	compileCmd.Flags().BoolVar(&forwardEst, "forward-est", false, "use a forward-looking estimate for compression compatibility")
	compileCmd.Flags().Uint32Var(&bytesPerElement, "bytes-per-element", 1, "tensor element size in bytes")

	rootCmd.AddCommand(compileCmd)
}
