package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kavaltui/kaval/internal/catalog"
	"github.com/kavaltui/kaval/internal/process"
	"github.com/kavaltui/kaval/internal/scan"
	"github.com/kavaltui/kaval/internal/snapshot"
	"github.com/kavaltui/kaval/internal/tui"
)

// Set via ldflags at build time.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "kav",
	Short: "Kaval — Guard your ports",
	Long: `Kaval shows what is listening on which ports, resolves each listener
to its owning process, and recognizes well-known developer services.
Launch without subcommands for the interactive dashboard.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if shell, _ := cmd.Flags().GetString("generate-completion"); shell != "" {
			switch shell {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			default:
				return fmt.Errorf("unsupported shell: %s (use bash, zsh, or fish)", shell)
			}
		}

		p := tea.NewProgram(
			tui.New(newResolver(), process.SysKiller{}, version),
			tea.WithAltScreen(),
		)
		_, err := p.Run()
		return err
	},
}

// newResolver wires the live enumerator to the built-in catalog.
func newResolver() *snapshot.Resolver {
	return snapshot.NewResolver(scan.SysEnumerator{}, catalog.Default())
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("kav %s\n", version))
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.Flags().String("generate-completion", "", "Generate shell completion (bash, zsh, fish)")
	rootCmd.Flags().MarkHidden("generate-completion")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(killCmd)
}
