package cli

import (
	"github.com/spf13/cobra"
)

func newPhotoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photo",
		Short: "Photo feed commands",
	}

	cmd.AddCommand(newPhotoListCmd())
	cmd.AddCommand(newPhotoUploadCmd())
	cmd.AddCommand(newPhotoLikeCmd())
	cmd.AddCommand(newPhotoDeleteCmd())
	cmd.AddCommand(newPhotoUploadsCmd())

	return cmd
}

func newPhotoListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List photos, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Photo

			if err := client.Get("/api/v1/photos", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newPhotoUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload one or more photos",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			for _, path := range args {
				var result Photo
				if err := client.Upload("/api/v1/photos", path, &result); err != nil {
					return err
				}
				out.Print(result)
			}
			return nil
		},
	}
}

func newPhotoLikeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "like <photo-id>",
		Short: "Toggle your like on a photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result LikeResult

			if err := client.Post("/api/v1/photos/"+args[0]+"/like", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newPhotoDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <photo-id>",
		Short: "Delete a photo you uploaded",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete("/api/v1/photos/" + args[0]); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Photo deleted")
			return nil
		},
	}
}

func newPhotoUploadsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uploads",
		Short: "Show recent upload task status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []UploadTask

			if err := client.Get("/api/v1/uploads", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
