package cli

import (
	"bytes"
	"io"
	"os"

	"github.com/basturkme/4IER-HMI/internal/errors"
	"github.com/basturkme/4IER-HMI/internal/testvector"
	"github.com/basturkme/4IER-HMI/internal/ui"
	"github.com/spf13/cobra"
)

// TestvectorOptions holds the testvector flags.
type TestvectorOptions struct {
	Output      string
	LabelColumn string
	NoNormalize bool
	Vector      testvector.Options
}

func addTestvectorFlags(cmd *cobra.Command, o *TestvectorOptions) {
	d := testvector.DefaultOptions()
	f := cmd.Flags()
	f.StringVarP(&o.Output, "output", "o", testvector.DefaultOutput, "header to write, '-' for stdout")
	f.StringVar(&o.LabelColumn, "label-column", "", "label column name (default restimulus, then stimulus)")
	f.IntVar(&o.Vector.Channels, "channels", d.Channels, "EMG channels to keep")
	f.IntVar(&o.Vector.Movement, "movement", d.Movement, "movement class to contrast with rest")
	f.BoolVar(&o.NoNormalize, "no-normalize", false, "keep raw values instead of standard scores")
	f.IntVar(&o.Vector.Window, "window", d.Window, "moving RMS window in samples, 0 for none")
	f.IntVar(&o.Vector.Segment, "segment", d.Segment, "rows per rest/movement slice")
	f.IntVar(&o.Vector.Decimals, "decimals", d.Decimals, "digits after the decimal point")
	f.BoolVar(&o.Vector.Labels, "labels", false, "also write a test_labels array")
}

func testvectorCommand(cmd *cobra.Command, input string, opts TestvectorOptions) error {
	var in io.Reader = cmd.InOrStdin()
	if input != "-" {
		f, err := os.Open(input)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrExport,
				"Couldn't open dataset "+input,
				"Export the recording as CSV first")
		}
		defer f.Close()
		in = f
	}

	vopts := opts.Vector
	vopts.Normalize = !opts.NoNormalize

	// Render fully before touching the output so a failed run leaves the
	// previous header in place.
	var buf bytes.Buffer
	v, err := testvector.Generate(in, &buf, opts.LabelColumn, vopts)
	if err != nil {
		return err
	}

	if opts.Output == "-" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(opts.Output, buf.Bytes(), 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrExport,
			"Couldn't write "+opts.Output,
			"Check the directory exists and is writable")
	}
	ui.Success(cmd.OutOrStdout(), "Wrote %s (%d rows x %d channels)", opts.Output, v.Len(), v.Channels)
	return nil
}
