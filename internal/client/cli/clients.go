package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/clientbook/internal/client/tabs"
	"github.com/dmitrijs2005/clientbook/internal/common"
	"github.com/dmitrijs2005/clientbook/internal/models"
)

// lookupClient resolves ref as a 1-based position in the client list, a
// client id or a case-insensitive client name, in that order.
func (a *App) lookupClient(ref string) (models.Client, error) {
	clients := a.sync.Clients()

	if n, err := strconv.Atoi(ref); err == nil {
		if n >= 1 && n <= len(clients) {
			return clients[n-1], nil
		}
		return models.Client{}, fmt.Errorf("%w: no client number %d", common.ErrorNotFound, n)
	}

	for _, c := range clients {
		if c.ID == ref {
			return c, nil
		}
	}
	for _, c := range clients {
		if strings.EqualFold(c.Name, ref) {
			return c, nil
		}
	}
	return models.Client{}, fmt.Errorf("%w: no client %q", common.ErrorNotFound, ref)
}

// pickClient resolves the client named by args. Without args it takes the
// active tab, and without one it asks.
func (a *App) pickClient(args []string) (models.Client, error) {
	if len(args) > 0 {
		return a.lookupClient(strings.Join(args, " "))
	}
	if id := a.tabs.Active(); id != tabs.Main {
		if c, ok := a.sync.Client(id); ok {
			return c, nil
		}
	}
	ref, err := getSimpleText(a.reader, "Enter client number, id or name", a.out)
	if err != nil {
		return models.Client{}, err
	}
	if ref, err = requireText(ref, "client"); err != nil {
		return models.Client{}, err
	}
	return a.lookupClient(ref)
}

// ListClients prints the clients newest first with their entry count.
func (a *App) ListClients(context.Context) error {
	if a.sync.Loading() {
		fmt.Fprintln(a.out, "Loading...")
	}
	clients := a.sync.Clients()
	if len(clients) == 0 {
		fmt.Fprintln(a.out, "No clients yet, add one with 'addclient'")
		return nil
	}
	for i, c := range clients {
		fmt.Fprintf(a.out, "%3d. %-40s %4d entries  since %s\n",
			i+1, c.Name, len(a.sync.GetClientEntries(c.ID)), c.CreatedAt.Local().Format("02/01/2006"))
	}
	return nil
}

func (a *App) AddClient(ctx context.Context, args []string) error {
	name := strings.Join(args, " ")
	if name == "" {
		var err error
		if name, err = getSimpleText(a.reader, "Enter client name", a.out); err != nil {
			return err
		}
	}
	name, err := requireText(name, "client name")
	if err != nil {
		return err
	}

	rctx, cancel := a.requestContext(ctx)
	defer cancel()
	a.sync.AddClient(rctx, name)
	return nil
}

func (a *App) RenameClient(ctx context.Context, args []string) error {
	c, err := a.pickClient(args)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, fmt.Sprintf("Enter new name for %s", c.Name), a.out)
	if err != nil {
		return err
	}
	if name, err = requireText(name, "client name"); err != nil {
		return err
	}

	rctx, cancel := a.requestContext(ctx)
	defer cancel()
	a.sync.UpdateClient(rctx, c.ID, name)
	return nil
}

// DeleteClient asks for confirmation, then deletes the client together
// with its entries.
func (a *App) DeleteClient(ctx context.Context, args []string) error {
	c, err := a.pickClient(args)
	if err != nil {
		return err
	}
	n := len(a.sync.GetClientEntries(c.ID))
	answer, err := getSimpleText(a.reader, fmt.Sprintf("Delete %s and its %d entries? (y/N)", c.Name, n), a.out)
	if err != nil {
		return err
	}
	if ans := strings.ToLower(answer); ans != "y" && ans != "yes" {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	rctx, cancel := a.requestContext(ctx)
	defer cancel()
	a.sync.DeleteClient(rctx, c.ID)
	return nil
}

// OpenTab opens the client's tab and shows it.
func (a *App) OpenTab(ctx context.Context, args []string) error {
	var (
		c   models.Client
		err error
	)
	if len(args) > 0 {
		c, err = a.lookupClient(strings.Join(args, " "))
	} else {
		var ref string
		if ref, err = getSimpleText(a.reader, "Enter client number, id or name", a.out); err == nil {
			c, err = a.lookupClient(ref)
		}
	}
	if err != nil {
		return err
	}

	a.tabs.Open(c.ID, c.Name)
	return a.showClient(c)
}

// CloseTab closes the named tab, or the active one.
func (a *App) CloseTab(_ context.Context, args []string) error {
	id := a.tabs.Active()
	if len(args) > 0 {
		c, err := a.lookupClient(strings.Join(args, " "))
		if err != nil {
			return err
		}
		id = c.ID
	}
	if id == tabs.Main || !a.tabs.Has(id) {
		return fmt.Errorf("%w: no such tab", common.ErrorNotFound)
	}
	a.tabs.Close(id)
	return nil
}

// ListTabs prints the overview and every open tab, marking the active one.
func (a *App) ListTabs(context.Context) error {
	active := a.tabs.Active()
	mark := func(id string) string {
		if id == active {
			return "*"
		}
		return " "
	}
	fmt.Fprintf(a.out, "%s 0. Clients\n", mark(tabs.Main))
	for i, t := range a.tabs.List() {
		fmt.Fprintf(a.out, "%s %d. %s\n", mark(t.ClientID), i+1, t.ClientName)
	}
	return nil
}

// Show prints the entries of a client. Without arguments it shows the
// active tab, or the client list when the overview is active.
func (a *App) Show(ctx context.Context, args []string) error {
	if len(args) == 0 && a.tabs.Active() == tabs.Main {
		return a.ListClients(ctx)
	}
	c, err := a.pickClient(args)
	if err != nil {
		return err
	}
	if a.tabs.Has(c.ID) {
		a.tabs.Activate(c.ID)
	}
	return a.showClient(c)
}
