// Command viewer is a read-only ops tool: it renders the coordinator's
// debug endpoints as tables without touching the running process.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"

	"price-pact/domain"
	"price-pact/observability"
	"price-pact/repositories"
)

type Config struct {
	DebugURL string `envconfig:"VIEWER_DEBUG_URL" default:"http://localhost:6060"`
	// VIEWER_COLOURS enables colorized output for better log readability
	Colours bool          `envconfig:"VIEWER_COLOURS" default:"true"`
	Timeout time.Duration `envconfig:"VIEWER_TIMEOUT" default:"5s"`
}

func main() {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	if !cfg.Colours {
		color.Disable()
	}
	client := &http.Client{Timeout: cfg.Timeout}

	var stats observability.Snapshot
	if err := fetch(client, cfg.DebugURL+"/debug/stats", &stats); err != nil {
		log.Fatalf("Failed to fetch stats: %v", err)
	}
	var rooms []domain.Room
	if err := fetch(client, cfg.DebugURL+"/debug/rooms", &rooms); err != nil {
		log.Fatalf("Failed to fetch rooms: %v", err)
	}
	var records []repositories.Record
	if err := fetch(client, cfg.DebugURL+"/debug/ledger", &records); err != nil {
		log.Fatalf("Failed to fetch ledger: %v", err)
	}

	color.Bold.Println("Runtime")
	renderStats(stats)
	fmt.Println()
	color.Bold.Println("Live rooms")
	renderRooms(rooms)
	fmt.Println()
	color.Bold.Println("Ledger (most recent first)")
	renderLedger(records)
}

func fetch(client *http.Client, url string, out any) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func newTable(headers []string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(headers)
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
	return table
}

func renderStats(s observability.Snapshot) {
	table := newTable([]string{"Metric", "Value"})
	table.Append([]string{"Live rooms", fmt.Sprintf("%d", s.LiveRooms)})
	table.Append([]string{"Connections", fmt.Sprintf("%d", s.Connections)})
	table.Append([]string{"Rooms created", fmt.Sprintf("%d", s.RoomsCreated)})
	table.Append([]string{"Rooms disposed", fmt.Sprintf("%d", s.RoomsDisposed)})
	table.Append([]string{"Events dispatched", fmt.Sprintf("%d", s.EventsDispatched)})
	table.Append([]string{"Events dropped", fmt.Sprintf("%d", s.EventsDropped)})
	table.Append([]string{"Mints", fmt.Sprintf("%d", s.MintsCompleted)})
	table.Append([]string{"Settlements", fmt.Sprintf("%d", s.SettlementsCompleted)})
	table.Append([]string{"Alloc (MB)", fmt.Sprintf("%d", s.AllocMemMb)})
	table.Append([]string{"CPU %", fmt.Sprintf("%.2f", s.CPUPercent)})
	table.Append([]string{"Updated at", s.UpdatedAt})
	table.Render()
}

func renderRooms(rooms []domain.Room) {
	table := newTable([]string{"Code", "Status", "Creator", "Members", "Predictions", "Consensus", "Created"})
	for _, room := range rooms {
		consensus := "-"
		if room.ConsensusReached {
			consensus = fmt.Sprintf("%.2f", room.ConsensusValue)
		}
		table.Append([]string{
			room.ID,
			colorStatus(room.Status),
			shorten(room.Creator),
			fmt.Sprintf("%d", len(room.Participants)),
			fmt.Sprintf("%d", len(room.Predictions)),
			consensus,
			room.CreatedAt.Format("15:04:05"),
		})
	}
	table.Render()
}

func renderLedger(records []repositories.Record) {
	table := newTable([]string{"At", "Kind", "Room", "Account", "Amount", "Ref"})
	for _, rec := range records {
		table.Append([]string{
			rec.At.Format("15:04:05"),
			rec.Kind,
			rec.Room,
			shorten(rec.Account),
			fmt.Sprintf("%.2f", rec.Amount),
			rec.Ref,
		})
	}
	table.Render()
}

func colorStatus(status domain.RoomStatus) string {
	switch status {
	case domain.StatusWaiting:
		return color.Yellow.Sprint(status)
	case domain.StatusStarted:
		return color.Green.Sprint(status)
	case domain.StatusSettled:
		return color.Cyan.Sprint(status)
	default:
		return string(status)
	}
}

func shorten(account string) string {
	if len(account) <= 12 {
		return account
	}
	return account[:8] + "..."
}
