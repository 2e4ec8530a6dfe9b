package cmd

import (
	"fmt"
	"net/http"
	"os"

	"filegrid/internal/tui/browser"
	"filegrid/pkg/grid"
	"filegrid/pkg/upload"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewBrowseCmd creates the `filegrid browse` command.
func NewBrowseCmd(logger *logrus.Logger) *cobra.Command {
	var (
		sourceURL  string
		enableUp   bool
		uploadAddr string
		uploadDir  string
		destDir    string
	)

	cmd := &cobra.Command{
		Use:   "browse [path]",
		Short: "Browse a file hierarchy in an interactive grid",
		Long: `Browse renders a hierarchy as a navigable grid. The hierarchy comes
from a YAML or JSON file, from walking a directory, or from a remote
source URL. With --upload, a tus endpoint accepts new files and adds
them to the grid as they complete.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
				return fmt.Errorf("browse requires an interactive terminal")
			}
			if sourceURL != "" && len(args) > 0 {
				return fmt.Errorf("pass either a path or --source, not both")
			}

			opts := grid.Options{
				Indent: viper.GetInt("indent"),
				Upload: enableUp,
			}

			switch {
			case sourceURL != "":
				opts.Source = sourceURL
			case len(args) > 0:
				nodes, err := loadHierarchy(args[0])
				if err != nil {
					return err
				}
				opts.Data = nodes
			default:
				nodes, err := loadHierarchy(".")
				if err != nil {
					return err
				}
				opts.Data = nodes
			}

			if enableUp {
				if uploadAddr == "" {
					uploadAddr = viper.GetString("upload.addr")
				}
				if uploadDir == "" {
					uploadDir = viper.GetString("upload.dir")
				}
				if destDir == "" {
					destDir = viper.GetString("upload.dest_dir")
				}
				opts.UploadEndpoint = grid.LiteralURL("http://" + uploadAddr + viper.GetString("upload.base_path"))
				opts.UploadOptions = upload.Options{
					Dir:      uploadDir,
					DestDir:  destDir,
					BasePath: viper.GetString("upload.base_path"),
					MaxSize:  viper.GetInt64("upload.max_size"),
				}
			}

			ctrl, err := grid.New(opts, logger)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			if srv := ctrl.Uploader(); srv != nil {
				mux := http.NewServeMux()
				srv.Mount(mux)
				go func() {
					if err := http.ListenAndServe(uploadAddr, mux); err != nil {
						logger.WithError(err).Error("upload endpoint stopped")
					}
				}()
				logger.WithField("endpoint", ctrl.UploadURL(nil)).Info("upload endpoint listening")
			}

			model := browser.New(ctrl)
			p := tea.NewProgram(model, tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running grid: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceURL, "source", "", "Fetch the hierarchy from a URL instead of a local path")
	cmd.Flags().BoolVar(&enableUp, "upload", false, "Accept file uploads while browsing")
	cmd.Flags().StringVar(&uploadAddr, "upload-addr", "", "Address for the upload endpoint (default from config, localhost:8316)")
	cmd.Flags().StringVar(&uploadDir, "upload-dir", "", "Staging directory for in-flight uploads")
	cmd.Flags().StringVar(&destDir, "upload-dest", "", "Directory completed uploads are moved to")

	return cmd
}
