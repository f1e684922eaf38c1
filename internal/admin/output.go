package admin

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dmitrijs2005/tokenquest/internal/models"
)

// output writes command results as text or as a JSON envelope.
type output struct {
	format string
	w      io.Writer
}

type response struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

// emit encodes data in json mode and calls text otherwise.
func (o output) emit(data any, text func(w io.Writer)) error {
	if o.format == "json" {
		enc := json.NewEncoder(o.w)
		enc.SetIndent("", "  ")
		return enc.Encode(response{Status: "ok", Data: data})
	}
	text(o.w)
	return nil
}

func writeAccount(w io.Writer, a *models.Account) {
	if a == nil {
		fmt.Fprintln(w, "account: none")
		return
	}
	fmt.Fprintf(w, "account %s", a.ID)
	if a.DisplayName != "" {
		fmt.Fprintf(w, " (%s)", a.DisplayName)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  energy:             %d\n", a.Energy)
	fmt.Fprintf(w, "  total earned:       %d\n", a.TotalEnergyEarned)
	fmt.Fprintf(w, "  completed missions: %d\n", a.CompletedMissions)
	fmt.Fprintf(w, "  redeemed rewards:   %d\n", a.RedeemedRewards)
}

func writeEntities(w io.Writer, kind models.Kind, es []models.Entity) {
	fmt.Fprintf(w, "%s (%d)\n", kind.Collection(), len(es))
	for _, e := range es {
		mark := " "
		if e.Resolved {
			mark = "x"
		}
		fmt.Fprintf(w, "  [%s] %-28s %4d  %s\n", mark, e.Title, e.EnergyValue, e.ID)
	}
}
