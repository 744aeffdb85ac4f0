package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/rollplay/internal/formatter"
	"github.com/desertthunder/rollplay/internal/imaging"
	"github.com/desertthunder/rollplay/internal/shared"
	"github.com/urfave/cli/v3"
)

// ImageNormalize re-encodes the input image as a JPEG no larger than --max-bytes.
func (r *Runner) ImageNormalize(ctx context.Context, cmd *cli.Command) error {
	input := cmd.StringArg("input")
	if input == "" {
		return fmt.Errorf("%w: input image path is required", shared.ErrMissingArgument)
	}
	output := cmd.String("output")

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	res, err := imaging.Normalize(data, cmd.Int("max-bytes"))
	if err != nil {
		return fmt.Errorf("failed to normalize %s: %w", input, err)
	}

	if err := os.WriteFile(output, res.Data, 0644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}

	r.logger.Debug("normalized image", "input", input, "quality", res.Quality, "bytes", len(res.Data))
	return r.writePlain("%s", formatter.RenderNormalize(input, len(data), res, output))
}
