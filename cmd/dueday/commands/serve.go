package commands

import (
	"github.com/spf13/cobra"

	"github.com/gongahkia/dueday/internal/web"
)

func NewServeCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the task API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			addr := e.cfg.Listen
			if listen != "" {
				addr = listen
			}
			return web.NewServer(e.svc).Run(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Address to listen on (default from config)")
	return cmd
}
