package feed

import (
	"miniflux.app/client"
)

type Entry struct {
	EntryID int64
	Title   string
	URL     string
}

type MinifluxInfo struct {
	Endpoint string
	ApiKey   string
}

// Miniflux reads recipe links from a miniflux instance. Subscribing a food
// blog's RSS feed there makes every new post show up as an unread entry.
type Miniflux struct {
	client *client.Client
}

func NewMiniflux(mflInfo MinifluxInfo) *Miniflux {
	return &Miniflux{
		client: client.New(mflInfo.Endpoint, mflInfo.ApiKey),
	}
}

func (m *Miniflux) Unread() ([]Entry, error) {
	result, err := m.client.Entries(&client.Filter{Status: "unread"})
	if err != nil {
		return []Entry{}, err
	}

	entries := []Entry{}
	for _, entry := range result.Entries {
		entries = append(entries, Entry{
			EntryID: entry.ID,
			Title:   entry.Title,
			URL:     entry.URL,
		})
	}

	return entries, nil
}

func (m *Miniflux) MarkRead(entryID int64) error {
	if err := m.client.UpdateEntries([]int64{entryID}, "read"); err != nil {
		return err
	}

	return nil
}
