package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/clientbook/internal/client/export"
	"github.com/dmitrijs2005/clientbook/internal/client/tabs"
	"github.com/dmitrijs2005/clientbook/internal/common"
	"github.com/dmitrijs2005/clientbook/internal/models"
	"github.com/shopspring/decimal"
)

func (a *App) showClient(c models.Client) error {
	entries := a.sync.GetClientEntries(c.ID)

	fmt.Fprintf(a.out, "== %s ==\n", c.Name)
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No entries yet, add one with 'addentry'")
		return nil
	}

	total := decimal.Zero
	for i, e := range entries {
		fmt.Fprintf(a.out, "%3d. %s  %10s  %s\n", i+1, e.CreatedAt.Local().Format(export.DateLayout), e.Cost.StringFixed(2), e.Description)
		total = total.Add(e.Cost)
	}
	fmt.Fprintf(a.out, "     %d entries, total %s\n", len(entries), total.StringFixed(2))
	return nil
}

// AddEntry prompts for a description and a cost and records the entry for
// the chosen client.
func (a *App) AddEntry(ctx context.Context, args []string) error {
	c, err := a.pickClient(args)
	if err != nil {
		return err
	}

	desc, err := getSimpleText(a.reader, "Enter description", a.out)
	if err != nil {
		return err
	}
	if desc, err = requireText(desc, "description"); err != nil {
		return err
	}

	raw, err := getSimpleText(a.reader, "Enter cost (empty for 0)", a.out)
	if err != nil {
		return err
	}
	cost, err := parseCost(raw)
	if err != nil {
		return err
	}

	rctx, cancel := a.requestContext(ctx)
	defer cancel()
	a.sync.AddEntry(rctx, c.ID, desc, cost)
	return nil
}

// DeleteEntry removes an entry given by its position in the active tab or
// by id.
func (a *App) DeleteEntry(ctx context.Context, args []string) error {
	var ref string
	if len(args) > 0 {
		ref = args[0]
	} else {
		var err error
		if ref, err = getSimpleText(a.reader, "Enter entry number or id", a.out); err != nil {
			return err
		}
	}

	e, err := a.lookupEntry(ref)
	if err != nil {
		return err
	}

	rctx, cancel := a.requestContext(ctx)
	defer cancel()
	a.sync.DeleteEntry(rctx, e.ID)
	return nil
}

func (a *App) lookupEntry(ref string) (models.Entry, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		active := a.tabs.Active()
		if active == tabs.Main {
			return models.Entry{}, fmt.Errorf("%w: open a client to delete entries by number", common.ErrValidation)
		}
		entries := a.sync.GetClientEntries(active)
		if n < 1 || n > len(entries) {
			return models.Entry{}, fmt.Errorf("%w: no entry number %d", common.ErrorNotFound, n)
		}
		return entries[n-1], nil
	}

	for _, e := range a.sync.Entries() {
		if e.ID == ref {
			return e, nil
		}
	}
	return models.Entry{}, fmt.Errorf("%w: no entry %q", common.ErrorNotFound, ref)
}
