package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/TTboyi/manga-factory/internal/client"
)

func newNovelCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "novel",
		Short: "Turn raw text or a document into novel text",
	}

	cmd.AddCommand(newNovelGenerateCommand(ctx))
	cmd.AddCommand(newNovelUploadCommand(ctx))

	return cmd
}

func newNovelGenerateCommand(ctx *commandContext) *cobra.Command {
	var text, textFile, outPath string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Polish raw text into novel text",
		RunE: func(cmd *cobra.Command, args []string) error {
			if text == "" && textFile == "" {
				return errors.New("either --text or --file is required")
			}
			if text == "" {
				data, err := os.ReadFile(textFile)
				if err != nil {
					return err
				}
				text = string(data)
			}

			c, err := ctx.ensureClient()
			if err != nil {
				return err
			}

			result, err := c.GenerateNovel(cmd.Context(), text)
			if err != nil {
				return err
			}
			return printNovelResult(cmd, outPath, result)
		},
	}

	cmd.Flags().StringVarP(&text, "text", "t", "", "Raw text to polish")
	cmd.Flags().StringVarP(&textFile, "file", "f", "", "File with raw text to polish")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Write the novel text to this file")
	cmd.MarkFlagsMutuallyExclusive("text", "file")

	return cmd
}

func newNovelUploadCommand(ctx *commandContext) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "upload <document>",
		Short: "Upload a txt/doc/docx document and extract novel text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			c, err := ctx.ensureClient()
			if err != nil {
				return err
			}

			result, err := c.UploadNovel(cmd.Context(), filepath.Base(args[0]), file)
			if err != nil {
				return err
			}
			return printNovelResult(cmd, outPath, result)
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Write the novel text to this file")

	return cmd
}

// printNovelResult writes the plain novel text either to a file or to
// stdout. Scene count goes to stderr so piping stdout stays clean.
func printNovelResult(cmd *cobra.Command, outPath string, result client.NovelResult) error {
	if outPath == "" {
		fmt.Fprintln(cmd.OutOrStdout(), result.NovelText)
	} else {
		if err := os.WriteFile(outPath, []byte(result.NovelText), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", outPath, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved novel text to %s\n", outPath)
	}
	if len(result.Scenes) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Recognized %d initial scenes\n", len(result.Scenes))
	}
	return nil
}
