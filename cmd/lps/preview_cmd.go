package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"time"

	"atomicgo.dev/keyboard"
	"atomicgo.dev/keyboard/keys"
	"github.com/lightplayer/lps"
	"github.com/lightplayer/lps/fixed"
	"github.com/lightplayer/lps/render"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview [file]",
	Short: "Play a script in the terminal",
	Long: `Play a script as an animation in a truecolor terminal.

Keys: space pauses, left and right step one frame while paused, r restarts,
q or escape quits.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !isTerminal(os.Stdout) {
			return errors.New("preview needs a terminal")
		}
		source, filename, err := getSource(cmd, args)
		if err != nil {
			return err
		}
		p, err := lps.Compile(context.Background(), source, getLPSOptions(filename)...)
		if err != nil {
			return err
		}
		opts, err := vmOptions(cmd)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		width, _ := flags.GetInt("width")
		height, _ := flags.GetInt("height")
		fps, _ := flags.GetFloat64("fps")
		if fps <= 0 {
			fps = render.DefaultFPS
		}
		r, err := render.NewRenderer(p, width, height, render.WithVMOptions(opts...))
		if err != nil {
			return err
		}
		return play(r, fps)
	},
}

// player tracks the playback position. It is driven by key events and a
// ticker.
type player struct {
	frame  int
	fps    float64
	paused bool
	quit   bool
}

func (pl *player) time() fixed.Fixed {
	return fixed.FromFloat(float64(pl.frame) / pl.fps)
}

// handle applies a key press and reports whether a redraw is needed.
func (pl *player) handle(key keys.Key) bool {
	switch key.Code {
	case keys.CtrlC, keys.Escape:
		pl.quit = true
	case keys.Space:
		pl.paused = !pl.paused
	case keys.Right:
		if pl.paused {
			pl.frame++
			return true
		}
	case keys.Left:
		if pl.paused && pl.frame > 0 {
			pl.frame--
			return true
		}
	case keys.RuneKey:
		switch key.String() {
		case "q":
			pl.quit = true
		case "r":
			pl.frame = 0
			return true
		}
	}
	return false
}

// tick advances one frame unless paused.
func (pl *player) tick() bool {
	if pl.paused {
		return false
	}
	pl.frame++
	return true
}

func play(r *render.Renderer, fps float64) error {
	pressed := make(chan keys.Key)
	done := make(chan struct{})
	defer close(done)
	go keyboard.Listen(func(key keys.Key) (bool, error) {
		select {
		case pressed <- key:
		case <-done:
			return true, nil
		}
		return key.Code == keys.CtrlC || key.Code == keys.Escape || key.String() == "q", nil
	})

	out := bufio.NewWriter(os.Stdout)
	fmt.Fprint(out, "\x1b[2J\x1b[?25l")
	defer func() {
		fmt.Fprint(out, "\x1b[0m\x1b[?25h\n")
		out.Flush()
	}()

	pl := &player{fps: fps}
	img := image.NewRGBA(r.Bounds())
	ticker := time.NewTicker(time.Duration(float64(time.Second) / fps))
	defer ticker.Stop()

	redraw := true
	for !pl.quit {
		if redraw {
			if err := r.Draw(img, pl.time()); err != nil {
				return err
			}
			fmt.Fprint(out, "\x1b[H")
			writeHalfBlocks(out, img)
			status := "playing"
			if pl.paused {
				status = "paused "
			}
			fmt.Fprintf(out, "\x1b[0m frame %d  t=%s  %s\n", pl.frame, pl.time(), status)
			if err := out.Flush(); err != nil {
				return err
			}
		}
		select {
		case key := <-pressed:
			redraw = pl.handle(key)
		case <-ticker.C:
			redraw = pl.tick()
		}
	}
	return nil
}

// writeHalfBlocks draws two pixel rows per text row: the upper half block
// takes the top pixel as foreground and the bottom pixel as background.
func writeHalfBlocks(w io.Writer, img *image.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			top := img.RGBAAt(x, y)
			fmt.Fprintf(w, "\x1b[38;2;%d;%d;%dm", top.R, top.G, top.B)
			if y+1 < b.Max.Y {
				bottom := img.RGBAAt(x, y+1)
				fmt.Fprintf(w, "\x1b[48;2;%d;%d;%dm", bottom.R, bottom.G, bottom.B)
			} else {
				fmt.Fprint(w, "\x1b[49m")
			}
			fmt.Fprint(w, "▀")
		}
		fmt.Fprint(w, "\x1b[0m\n")
	}
}

func init() {
	flags := previewCmd.Flags()
	flags.Int("width", render.DefaultSize, "Canvas width")
	flags.Int("height", render.DefaultSize, "Canvas height")
	flags.Float64("fps", render.DefaultFPS, "Frames per second")
	addVMFlags(previewCmd)
}
