package internal

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/olekukonko/tablewriter"

	"chat-hub/contract"
	"chat-hub/domain/event"
)

const inspectTimeout = 2 * time.Second

// InspectorHandler renders a snapshot of the hub state as a plain-text
// table. The snapshot is produced by the coordinator goroutine, so the
// handler observes consistent state without extra locking.
func InspectorHandler(log *slog.Logger, dispatcher contract.IDispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan [][]string, 1)
		dispatcher.Dispatch(event.Inspect{Reply: reply})

		var rows [][]string
		select {
		case rows = <-reply:
		case <-time.After(inspectTimeout):
			log.Warn("Inspect request timed out")
			http.Error(w, "state snapshot timed out", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Room", "Owner", "Members", "Password", "Messages", "Bans", "Kicks"})
		table.SetAutoWrapText(false)
		table.SetAutoFormatHeaders(true)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.SetCenterSeparator("")
		table.SetColumnSeparator("")
		table.SetRowSeparator("")
		table.SetHeaderLine(false)
		table.SetBorder(false)
		table.SetTablePadding("\t")
		table.AppendBulk(rows)
		table.Render()
	}
}

// StartDebugServer serves the inspector on its own port so operational
// probing stays off the client-facing listener.
func StartDebugServer(log *slog.Logger, dispatcher contract.IDispatcher, port int) {
	mux := http.NewServeMux()
	mux.HandleFunc("/inspect", InspectorHandler(log, dispatcher))

	go func() {
		addr := fmt.Sprintf("0.0.0.0:%d", port)
		log.Info("Debug inspector listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error("Debug inspector stopped", "err", err)
		}
	}()
}
