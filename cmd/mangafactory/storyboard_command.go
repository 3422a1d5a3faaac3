package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/TTboyi/manga-factory/internal/models"
)

func newStoryboardCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storyboard",
		Short: "Render storyboard images for recognized scenes",
	}

	cmd.AddCommand(newStoryboardGenerateCommand(ctx))

	return cmd
}

func newStoryboardGenerateCommand(ctx *commandContext) *cobra.Command {
	var (
		novelFile  string
		scenesFile string
		visualFile string
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one image per scene",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(novelFile)
			if err != nil {
				return err
			}

			var scenes []models.Scene
			if err := readJSONFile(scenesFile, &scenes); err != nil {
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

			result, err := c.GenerateStoryboard(cmd.Context(), string(data), scenes, spec)
			if err != nil {
				return err
			}
			return writeResult(cmd, outPath, result)
		},
	}

	cmd.Flags().StringVarP(&novelFile, "novel", "n", "", "Novel text file")
	cmd.Flags().StringVarP(&scenesFile, "scenes", "s", "", "Scenes JSON file")
	cmd.Flags().StringVar(&visualFile, "visual", "", "Visual spec JSON file")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Write the storyboard JSON to this file")
	_ = cmd.MarkFlagRequired("novel")
	_ = cmd.MarkFlagRequired("scenes")

	return cmd
}
