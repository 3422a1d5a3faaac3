package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	// Precedence: flags over environment over .env file over defaults.
	// Environment is folded in before flag registration so parsed flags
	// simply overwrite it.
	cfg := NewConfig()
	dotEnvErr := cfg.LoadDotEnv(os.Getwd)
	cfg.LoadEnv(os.Getenv)

	ctx := newCommandContext(cfg)

	rootCmd := &cobra.Command{
		Use:           "mangafactory",
		Short:         "Turn a novel into a manga storyboard",
		Long:          "Manga Factory CLI: upload or type a novel, define the visual style, recognize scenes, generate storyboard images and save the project.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return dotEnvErr
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfg.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newRegisterCommand(ctx))
	rootCmd.AddCommand(newLoginCommand(ctx))
	rootCmd.AddCommand(newSendCaptchaCommand(ctx))
	rootCmd.AddCommand(newLoginEmailCommand(ctx))
	rootCmd.AddCommand(newLogoutCommand(ctx))
	rootCmd.AddCommand(newWhoamiCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newNovelCommand(ctx))
	rootCmd.AddCommand(newVisualCommand(ctx))
	rootCmd.AddCommand(newSceneCommand(ctx))
	rootCmd.AddCommand(newStoryboardCommand(ctx))
	rootCmd.AddCommand(newProjectCommand(ctx))

	return rootCmd
}
