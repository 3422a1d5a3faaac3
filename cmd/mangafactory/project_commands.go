package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/TTboyi/manga-factory/internal/client"
	"github.com/TTboyi/manga-factory/internal/models"
)

func newProjectCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Save and browse storyboard projects",
	}

	cmd.AddCommand(newProjectSaveCommand(ctx))
	cmd.AddCommand(newProjectListCommand(ctx))
	cmd.AddCommand(newProjectShowCommand(ctx))

	return cmd
}

func newProjectSaveCommand(ctx *commandContext) *cobra.Command {
	var (
		id             int64
		name           string
		novelFile      string
		scenesFile     string
		visualFile     string
		storyboardFile string
	)

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save the current wizard artifacts as a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := client.SaveProjectRequest{ID: id, Name: name}

			if novelFile != "" {
				data, err := os.ReadFile(novelFile)
				if err != nil {
					return err
				}
				req.NovelText = string(data)
			}
			if scenesFile != "" {
				if err := readJSONFile(scenesFile, &req.Scenes); err != nil {
					return err
				}
			}
			if visualFile != "" {
				var spec models.VisualSpec
				if err := readJSONFile(visualFile, &spec); err != nil {
					return err
				}
				req.VisualSpec = &spec
			}
			if storyboardFile != "" {
				var sb client.StoryboardResult
				if err := readJSONFile(storyboardFile, &sb); err != nil {
					return err
				}
				req.Images = sb.Images
			}

			c, err := ctx.ensureClient()
			if err != nil {
				return err
			}

			projectID, err := c.SaveProject(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved project %d\n", projectID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "Project id to overwrite (0 creates a new one)")
	cmd.Flags().StringVar(&name, "name", "", "Project name")
	cmd.Flags().StringVar(&novelFile, "novel", "", "Novel text file")
	cmd.Flags().StringVar(&scenesFile, "scenes", "", "Scenes JSON file")
	cmd.Flags().StringVar(&visualFile, "visual", "", "Visual spec JSON file")
	cmd.Flags().StringVar(&storyboardFile, "storyboard", "", "Storyboard JSON file")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newProjectListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects of the current account",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.ensureClient()
			if err != nil {
				return err
			}

			projects, err := c.ListMyProjects(cmd.Context())
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			if asJSON || !isTerminal(stdout) {
				return writeJSON(cmd, projects)
			}
			if len(projects) == 0 {
				fmt.Fprintln(stdout, "No projects yet")
				return nil
			}

			rows := make([][]string, 0, len(projects))
			for _, p := range projects {
				rows = append(rows, []string{strconv.FormatInt(p.ID, 10), p.Name, p.UpdatedAt})
			}
			table := renderTable(
				[]string{"ID", "Name", "Updated"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft},
			)
			fmt.Fprintln(stdout, table)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON even on a terminal")

	return cmd
}

func newProjectShowCommand(ctx *commandContext) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Fetch one project with all of its content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid project id %q", args[0])
			}

			c, err := ctx.ensureClient()
			if err != nil {
				return err
			}

			project, err := c.GetProjectFull(cmd.Context(), id)
			if err != nil {
				return err
			}
			return writeResult(cmd, outPath, project)
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Write the project JSON to this file")

	return cmd
}
