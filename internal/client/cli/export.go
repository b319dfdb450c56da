package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/clientbook/internal/client/export"
	"github.com/dmitrijs2005/clientbook/internal/filex"
	"github.com/dmitrijs2005/clientbook/internal/netx"
)

// exportArgs splits an optional leading format off args.
func exportArgs(args []string) (string, []string) {
	if len(args) > 0 && (args[0] == "xlsx" || args[0] == "csv") {
		return args[0], args[1:]
	}
	return "xlsx", args
}

func (a *App) render(format string, args []string) (name string, data []byte, contentType string, err error) {
	c, err := a.pickClient(args)
	if err != nil {
		return "", nil, "", err
	}
	entries := a.sync.GetClientEntries(c.ID)

	switch format {
	case "csv":
		data, err = export.CSV(entries)
		contentType = export.ContentTypeCSV
	default:
		data, err = export.XLSX(c.Name, entries)
		contentType = export.ContentTypeXLSX
	}
	if err != nil {
		return "", nil, "", err
	}
	return export.Filename(c.Name, a.now(), format), data, contentType, nil
}

// Export writes a client's entries to a file in the export directory.
//
//	export [xlsx|csv] [client]
func (a *App) Export(_ context.Context, args []string) error {
	format, rest := exportArgs(args)
	name, data, _, err := a.render(format, rest)
	if err != nil {
		return err
	}

	path, err := filex.WriteFile(a.config.ExportDir, name, data)
	if err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	fmt.Fprintf(a.out, "Exported to %s\n", path)
	return nil
}

// Share uploads an export to object storage and prints a temporary
// download link.
//
//	share [xlsx|csv] [client]
func (a *App) Share(ctx context.Context, args []string) error {
	format, rest := exportArgs(args)
	name, data, contentType, err := a.render(format, rest)
	if err != nil {
		return err
	}

	rctx, cancel := a.requestContext(ctx)
	defer cancel()
	up, err := a.api.CreateExportUpload(rctx, name, contentType)
	if err != nil {
		return err
	}
	if err := netx.UploadToPresignedURL(ctx, a.httpClient, up.UploadURL, contentType, data); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Download link (valid until %s):\n%s\n", up.ExpiresAt.Local().Format(export.DateLayout), up.DownloadURL)
	return nil
}

// Refresh reloads the mirror from the server.
func (a *App) Refresh(ctx context.Context) error {
	rctx, cancel := a.requestContext(ctx)
	defer cancel()
	a.sync.Load(rctx)
	fmt.Fprintf(a.out, "%d clients, %d entries\n", len(a.sync.Clients()), len(a.sync.Entries()))
	return nil
}
