package cli

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/youruser/galentine/internal/album"
	"github.com/youruser/galentine/internal/config"
	imagepkg "github.com/youruser/galentine/internal/image"
	"github.com/youruser/galentine/internal/util"
)

func newRenderCmd(cfg *config.Config) *cobra.Command {
	var (
		layout   string
		captions []string
		outDir   string
		keepsake bool
		qrText   string
	)

	cmd := &cobra.Command{
		Use:   "render [flags] photo...",
		Short: "Render a collage from up to 6 photos",
		Example: `  galentine render --layout polaroid --caption "beach day" --caption "" a.jpg b.jpg
  galentine render --keepsake --out ./exports *.png`,
		Args: cobra.RangeArgs(1, album.MaxItems),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := imagepkg.ParseLayout(layout)
			if err != nil {
				return err
			}
			if len(captions) > len(args) {
				return fmt.Errorf("%d captions for %d photos", len(captions), len(args))
			}

			batch := make([]album.Upload, len(args))
			for i, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				batch[i] = album.Upload{Name: filepath.Base(path), MIME: mime.TypeByExtension(filepath.Ext(path)), Data: data}
			}
			al, added, err := album.Album{}.Add(batch...)
			if err != nil {
				return fmt.Errorf("%s: %w", album.CapNotice, err)
			}
			for i, c := range captions {
				if al, err = al.SetCaption(added[i].ID, c); err != nil {
					return err
				}
			}

			tuning, err := cfg.Tuning()
			if err != nil {
				return err
			}
			style := imagepkg.CollageStyle
			if keepsake {
				style = imagepkg.KeepsakeStyle
			}
			if qrText == "" {
				qrText = cfg.QRText
			}
			if qrText != "" {
				style = style.WithQR(qrText)
			}

			sources := make([]imagepkg.Source, 0, al.Len())
			for _, it := range al.Items() {
				sources = append(sources, imagepkg.Source{Name: it.Name, Data: it.Data, Caption: it.Caption})
			}
			save := imagepkg.DelivererFunc(func(_ context.Context, filename string, data []byte) error {
				path, err := util.WriteFile(outDir, filename, data)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			})
			c := imagepkg.NewCompositor(tuning, imagepkg.WithLogger(slog.Default()))
			_, err = c.Export(cmd.Context(), sources, l, style, save)
			return err
		},
	}

	cmd.Flags().StringVarP(&layout, "layout", "l", string(imagepkg.LayoutGrid), "grid, stacked or polaroid")
	cmd.Flags().StringArrayVarP(&captions, "caption", "c", nil, "Caption for the next photo, in order (repeatable)")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Directory to write the collage to")
	cmd.Flags().BoolVar(&keepsake, "keepsake", false, "Render the post-proposal keepsake (always polaroid)")
	cmd.Flags().StringVar(&qrText, "qr", "", "Stamp a QR code of this text in the corner")
	return cmd
}
