package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"filegrid/pkg/upload"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewServeCmd creates the `filegrid serve` command, a standalone upload
// endpoint without the interactive grid.
func NewServeCmd(logger *logrus.Logger) *cobra.Command {
	var (
		addr    string
		dir     string
		destDir string
		maxSize int64
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a standalone file upload endpoint",
		Long: `Serve runs the tus upload endpoint on its own, for setups where the
grid lives in another process and only the endpoint is needed here.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = viper.GetString("upload.addr")
			}
			if dir == "" {
				dir = viper.GetString("upload.dir")
			}
			if destDir == "" {
				destDir = viper.GetString("upload.dest_dir")
			}

			srv, err := upload.NewServer(upload.Options{
				Dir:      dir,
				DestDir:  destDir,
				BasePath: viper.GetString("upload.base_path"),
				MaxSize:  maxSize,
			}, logger)
			if err != nil {
				return err
			}
			defer srv.Close()

			go func() {
				for ev := range srv.Events() {
					entry := logger.WithFields(logrus.Fields{
						"upload": ev.ID,
						"name":   ev.Name,
					})
					switch ev.Stage {
					case upload.StageAdded:
						entry.Info("upload started")
					case upload.StageProgress:
						entry.WithField("bytes", ev.Bytes).Debug("upload progress")
					case upload.StageComplete:
						entry.WithField("path", ev.Path).Info("upload complete")
					case upload.StageError:
						entry.WithError(ev.Err).Warn("upload failed")
					}
				}
			}()

			mux := http.NewServeMux()
			srv.Mount(mux)
			httpSrv := &http.Server{Addr: addr, Handler: mux}

			errCh := make(chan error, 1)
			go func() {
				logger.WithField("addr", addr).Info("upload endpoint listening")
				errCh <- httpSrv.ListenAndServe()
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case <-sigCh:
				logger.Info("shutting down")
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return httpSrv.Shutdown(ctx)
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Address to listen on (default from config, localhost:8316)")
	cmd.Flags().StringVar(&dir, "dir", "", "Staging directory for in-flight uploads")
	cmd.Flags().StringVar(&destDir, "dest", "", "Directory completed uploads are moved to")
	cmd.Flags().Int64Var(&maxSize, "max-size", 0, "Maximum upload size in bytes (0 for unlimited)")

	return cmd
}
