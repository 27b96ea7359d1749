package porting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExportSerializesFullGraph(t *testing.T) {
	db := newTestDB(t)
	store := newTestStore(t)
	sc := seedScenario(t, db, store)

	doc, refs, err := NewExporter(db, zap.NewNop()).Export(sc.user.ID)
	require.NoError(t, err)

	assert.Equal(t, DocumentVersion, doc.Version)
	assert.Equal(t, "explorer", doc.AccountID)
	assert.False(t, doc.ExportDate.IsZero())

	require.Len(t, doc.Categories, 1)
	assert.Equal(t, "hiking", doc.Categories[0].Name)

	require.Len(t, doc.Collections, 1)
	col := doc.Collections[0]
	assert.Equal(t, int64(0), col.ExportID)
	assert.Equal(t, "Iceland 2024", col.Name)
	assert.Equal(t, []string{"buddy"}, col.SharedWith)

	require.Len(t, doc.Locations, 1)
	loc := doc.Locations[0]
	assert.Equal(t, int64(0), loc.ExportID)
	assert.Equal(t, "Reykjavik", loc.Name)
	assert.Equal(t, []string{"capital", "coast"}, loc.Tags)
	assert.Equal(t, "hiking", loc.CategoryName)
	assert.Equal(t, "IS", loc.Country)
	assert.Equal(t, "IS-1", loc.Region)
	assert.Equal(t, "IS-1-reykjavik", loc.City)
	assert.Equal(t, []int64{0}, loc.CollectionIDs)

	require.Len(t, loc.Trails, 1)
	assert.Equal(t, "Laugavegur", loc.Trails[0].Name)

	require.Len(t, loc.Visits, 1)
	visit := loc.Visits[0]
	assert.Equal(t, "Atlantic/Reykjavik", visit.Timezone)
	require.Len(t, visit.Activities, 1)
	act := visit.Activities[0]
	assert.Equal(t, "Hike", act.Name)
	assert.Equal(t, float64(5000), act.Distance)
	assert.Equal(t, "Laugavegur", act.TrailName)
	assert.Equal(t, sc.gpxName, act.GPXFilename)

	require.Len(t, loc.Images, 1)
	assert.Equal(t, sc.imgName, loc.Images[0].Filename)
	assert.True(t, loc.Images[0].IsPrimary)
	require.Len(t, visit.Images, 1)
	assert.Empty(t, visit.Images[0].Filename)
	require.NotNil(t, visit.Images[0].RemoteAssetID)
	assert.Equal(t, "immich-asset-1", *visit.Images[0].RemoteAssetID)

	require.Len(t, loc.Attachments, 1)
	assert.Equal(t, "Tickets", loc.Attachments[0].Name)

	require.Len(t, doc.Transportation, 1)
	tr := doc.Transportation[0]
	assert.Equal(t, "Flight to KEF", tr.Name)
	require.NotNil(t, tr.CollectionID)
	assert.Equal(t, int64(0), *tr.CollectionID)

	require.Len(t, doc.Notes, 1)
	assert.Equal(t, []string{"https://vedur.is"}, doc.Notes[0].Links)

	require.Len(t, doc.Checklists, 1)
	require.Len(t, doc.Checklists[0].Items, 1)
	assert.True(t, doc.Checklists[0].Items[0].IsChecked)

	require.Len(t, doc.Lodging, 1)
	assert.Equal(t, "Harbor Hotel", doc.Lodging[0].Name)

	require.Len(t, doc.VisitedRegions, 1)
	assert.Equal(t, "IS-1", doc.VisitedRegions[0].RegionRef)
	require.Len(t, doc.VisitedCities, 1)
	assert.Equal(t, "IS-1-reykjavik", doc.VisitedCities[0].CityRef)

	// One gpx track, one image file, one attachment in the bundle manifest.
	paths := make(map[string]bool, len(refs))
	for _, ref := range refs {
		paths[ref.Path] = true
	}
	assert.True(t, paths[PrefixGPX+sc.gpxName])
	assert.True(t, paths[PrefixImages+sc.imgName])
	assert.True(t, paths[PrefixAttachments+sc.attName])
	assert.Len(t, refs, 3)
}

func TestExportScopesToOneAccount(t *testing.T) {
	db := newTestDB(t)
	store := newTestStore(t)
	sc := seedScenario(t, db, store)

	// The buddy account owns nothing even though a collection is shared with it.
	doc, refs, err := NewExporter(db, zap.NewNop()).Export(sc.buddy.ID)
	require.NoError(t, err)

	assert.Equal(t, "buddy", doc.AccountID)
	assert.Empty(t, doc.Collections)
	assert.Empty(t, doc.Locations)
	assert.Empty(t, doc.Transportation)
	assert.Empty(t, refs)
}

func TestExportUnknownAccountFails(t *testing.T) {
	db := newTestDB(t)

	_, _, err := NewExporter(db, zap.NewNop()).Export("no-such-id")
	assert.Error(t, err)
}
