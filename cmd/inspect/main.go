// Command inspect is a read-only scanner over the chat store. It walks a key
// prefix and renders the records as a table, which is handy to check what the
// server actually persisted without stopping it.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"
)

type Config struct {
	BadgerFilepath string `envconfig:"BADGER_FILEPATH" default:"/tmp/chat-hub"`
	// INSPECT_COLOURS enables colorized output for better readability
	Colours bool `envconfig:"INSPECT_COLOURS" default:"true"`
}

type messageRecord struct {
	ID       string `json:"id"`
	RoomID   string `json:"room_id"`
	AuthorID string `json:"author_id"`
	Content  string `json:"content"`
	Position uint64 `json:"position"`
	At       int64  `json:"at"`
}

type userRecord struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Rooms    []struct {
		DisplayName string `json:"room_name"`
		RoomID      string `json:"room_id"`
	} `json:"rooms"`
}

type roomRecord struct {
	ID      string   `json:"id"`
	Members []string `json:"members"`
}

func main() {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	prefix := flag.String("prefix", "msg:", "Prefix to scan (msg:, user:, room:)")
	flag.Parse()

	// BypassLockGuard allows opening while the server holds the lock
	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	title := fmt.Sprintf("Scanning %q in %s", *prefix, config.BadgerFilepath)
	if config.Colours {
		color.Cyan.Println(title)
	} else {
		fmt.Println(title)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Entity", "Detail"})
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

	rows := 0
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())

			err := item.Value(func(v []byte) error {
				table.Append(toRow(key, v))
				rows++
				return nil
			})
			if err != nil {
				// Log and keep scanning instead of aborting the whole run
				fmt.Printf("Error reading key %s: %v\n", key, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Scan failed: %v", err)
	}

	table.Render()
	fmt.Printf("\n%d records\n", rows)
}

func toRow(key string, val []byte) []string {
	switch {
	case strings.HasPrefix(key, "msg:"):
		var m messageRecord
		if err := json.Unmarshal(val, &m); err == nil {
			at := time.Unix(0, m.At).UTC().Format(time.RFC3339)
			detail := fmt.Sprintf("pos=%d author=%s at=%s %q", m.Position, short(m.AuthorID), at, m.Content)
			return []string{key, "MSG", short(m.ID), detail}
		}
	case strings.HasPrefix(key, "user:"):
		var u userRecord
		if err := json.Unmarshal(val, &u); err == nil {
			return []string{key, "USER", u.Username, fmt.Sprintf("%d rooms", len(u.Rooms))}
		}
	case strings.HasPrefix(key, "room:"):
		var r roomRecord
		if err := json.Unmarshal(val, &r); err == nil {
			return []string{key, "ROOM", short(r.ID), fmt.Sprintf("%d members", len(r.Members))}
		}
	}
	return []string{key, "RAW", "--------", fmt.Sprintf("Size: %d bytes", len(val))}
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
