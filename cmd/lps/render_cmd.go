package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/lightplayer/lps"
	"github.com/lightplayer/lps/fixed"
	"github.com/lightplayer/lps/render"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var renderCmd = &cobra.Command{
	Use:   "render [scene.toml | file]",
	Short: "Render frames to PNG files",
	Long: `Render the frames of a scene to PNG files.

The argument is either a TOML scene file or a script. For a script, the
canvas and frame range come from the flags.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scene, err := getScene(cmd, args)
		if err != nil {
			return err
		}
		source, err := scene.ScriptSource()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		p, err := lps.Compile(ctx, source, getLPSOptions(scene.ScriptName())...)
		if err != nil {
			return err
		}
		opts, err := vmOptions(cmd)
		if err != nil {
			return err
		}
		quiet, _ := cmd.Flags().GetBool("quiet")
		return render.Frames(ctx, p, scene, func(frame int, t fixed.Fixed, img *image.RGBA) error {
			path := scene.OutputPath(frame)
			if err := render.SavePNG(path, img, scene.Scale); err != nil {
				return err
			}
			log.Info().Int("frame", frame).Stringer("time", t).Str("path", path).Msg("rendered frame")
			if !quiet {
				fmt.Println(path)
			}
			return nil
		}, render.WithVMOptions(opts...))
	},
}

// getScene loads a scene file, or builds a scene around a script from the
// command line flags.
func getScene(cmd *cobra.Command, args []string) (*render.Scene, error) {
	if len(args) > 0 && filepath.Ext(args[0]) == ".toml" {
		return render.LoadScene(args[0])
	}
	flags := cmd.Flags()
	scene := &render.Scene{}
	scene.Width, _ = flags.GetInt("width")
	scene.Height, _ = flags.GetInt("height")
	scene.Frames, _ = flags.GetInt("frames")
	scene.FPS, _ = flags.GetFloat64("fps")
	scene.Start, _ = flags.GetFloat64("start")
	scene.Scale, _ = flags.GetInt("scale")
	scene.Output, _ = flags.GetString("out")
	if len(args) > 0 {
		scene.Script = args[0]
	} else {
		source, _, err := getSource(cmd, args)
		if err != nil {
			return nil, err
		}
		scene.Source = source
	}
	if viper.GetBool("expr") {
		return nil, fmt.Errorf("render needs a script, not an expression")
	}
	if err := scene.Validate(); err != nil {
		return nil, err
	}
	return scene, nil
}

func init() {
	flags := renderCmd.Flags()
	flags.Int("width", render.DefaultSize, "Canvas width")
	flags.Int("height", render.DefaultSize, "Canvas height")
	flags.Int("frames", 1, "Number of frames")
	flags.Float64("fps", render.DefaultFPS, "Frames per second")
	flags.Float64("start", 0, "Time of the first frame in seconds")
	flags.Int("scale", 1, "Upscale factor of the saved images")
	flags.String("out", render.DefaultOutput, "Output file pattern")
	flags.BoolP("quiet", "q", false, "Do not print file names")
	addVMFlags(renderCmd)
}
