package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/TTboyi/manga-factory/internal/client"
)

func newVisualCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "visual",
		Short: "Derive a visual spec for characters and art style",
	}

	cmd.AddCommand(newVisualAnalyzeCommand(ctx))

	return cmd
}

func newVisualAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var (
		roleText   string
		styleText  string
		novelFile  string
		roleImage  string
		styleImage string
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Distill a visual spec from text hints and reference images",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := client.AnalyzeVisualRequest{
				RoleText:  roleText,
				StyleText: styleText,
			}

			if novelFile != "" {
				data, err := os.ReadFile(novelFile)
				if err != nil {
					return err
				}
				req.NovelText = string(data)
			}

			var files []*os.File
			defer func() {
				for _, f := range files {
					f.Close()
				}
			}()
			openImage := func(path string) (*client.ImageFile, error) {
				file, err := os.Open(path)
				if err != nil {
					return nil, err
				}
				files = append(files, file)
				return &client.ImageFile{Name: filepath.Base(path), Reader: file}, nil
			}

			var err error
			if roleImage != "" {
				if req.RoleImage, err = openImage(roleImage); err != nil {
					return err
				}
			}
			if styleImage != "" {
				if req.StyleImage, err = openImage(styleImage); err != nil {
					return err
				}
			}

			c, err := ctx.ensureClient()
			if err != nil {
				return err
			}

			spec, err := c.AnalyzeVisual(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeResult(cmd, outPath, spec)
		},
	}

	cmd.Flags().StringVar(&roleText, "role-text", "", "Character description hints")
	cmd.Flags().StringVar(&styleText, "style-text", "", "Art style hints")
	cmd.Flags().StringVar(&novelFile, "novel-file", "", "Novel text file for extra context")
	cmd.Flags().StringVar(&roleImage, "role-image", "", "Character reference image")
	cmd.Flags().StringVar(&styleImage, "style-image", "", "Art style reference image")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Write the visual spec JSON to this file")

	return cmd
}
