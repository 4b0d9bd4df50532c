package tasks

import (
	"fmt"

	"github.com/desertthunder/mindmap/internal/models"
	tu "github.com/desertthunder/mindmap/internal/testing"
)

func track(id, name, artist string) models.Track {
	return models.Track{ID: id, Name: name, Artists: []string{artist}}
}

func resolverQuery(title, artist string) string {
	return fmt.Sprintf("track:%s artist:%s", title, artist)
}

// catalogWith returns a catalog holding seed where each candidate resolves to the matching track.
func catalogWith(seed models.Track, resolvable map[models.Candidate]models.Track) *tu.FakeCatalog {
	catalog := tu.NewFakeCatalog("owner", seed)
	for c, tr := range resolvable {
		catalog.AddResult(resolverQuery(c.Title, c.Artist), tr)
	}
	return catalog
}
