package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/TTboyi/manga-factory/internal/models"
)

func newSceneCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scene",
		Short: "Split novel text into storyboard shots",
	}

	cmd.AddCommand(newSceneRecognizeCommand(ctx))

	return cmd
}

func newSceneRecognizeCommand(ctx *commandContext) *cobra.Command {
	var (
		novelFile  string
		visualFile string
		shots      int
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "recognize",
		Short: "Recognize scenes in a novel text file",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(novelFile)
			if err != nil {
				return err
			}

			var spec models.VisualSpec
			if visualFile != "" {
				if err := readJSONFile(visualFile, &spec); err != nil {
					return err
				}
			}

			c, err := ctx.ensureClient()
			if err != nil {
				return err
			}

			scenes, err := c.RecognizeScenes(cmd.Context(), string(data), spec, shots)
			if err != nil {
				return err
			}
			return writeResult(cmd, outPath, scenes)
		},
	}

	cmd.Flags().StringVarP(&novelFile, "novel", "n", "", "Novel text file")
	cmd.Flags().StringVar(&visualFile, "visual", "", "Visual spec JSON file")
	cmd.Flags().IntVar(&shots, "shots", 0, "Number of shots to split into (0 lets the backend decide)")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Write the scenes JSON to this file")
	_ = cmd.MarkFlagRequired("novel")

	return cmd
}
