package db

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/symbiote-h2020/Administration-sub000/internal/domain"
)

func TestModelRoundTripPreservesOrderAndInvitations(t *testing.T) {
	threshold := 0.95
	at := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)
	fed := domain.Federation{
		ID:     "fed-1",
		Name:   "Federation One",
		Public: true,
		Members: []domain.FederationMember{
			{PlatformID: "plat-3", InterworkingServiceURL: "https://plat-3.example"},
			{PlatformID: "plat-1", InterworkingServiceURL: "https://plat-1.example"},
		},
		SLAConstraints: []domain.QoSConstraint{{Metric: domain.QoSMetricAvailability, Comparator: domain.ComparatorGreaterThan, Threshold: &threshold}},
		LastModified:   at,
	}
	fed.Invite("plat-7", at)

	model, err := toModel(fed)
	if err != nil {
		t.Fatalf("to model: %v", err)
	}
	want := `[{"platformId":"plat-3","interworkingServiceURL":"https://plat-3.example"},{"platformId":"plat-1","interworkingServiceURL":"https://plat-1.example"}]`
	if string(model.MembersJSON) != want {
		t.Fatalf("members column = %s", model.MembersJSON)
	}

	back, err := fromModel(model)
	if err != nil {
		t.Fatalf("from model: %v", err)
	}
	if ids := back.MemberIDs(); !reflect.DeepEqual(ids, []string{"plat-3", "plat-1"}) {
		t.Fatalf("member order lost: %v", ids)
	}
	if !at.Equal(back.OpenInvitations["plat-7"].CreatedAt) {
		t.Fatalf("invitation timestamp lost: %+v", back.OpenInvitations)
	}
	if !back.Public {
		t.Fatalf("public flag lost")
	}
	if got := *back.SLAConstraints[0].Threshold; got != 0.95 {
		t.Fatalf("threshold = %v", got)
	}
}

func TestFromModelToleratesEmptyColumns(t *testing.T) {
	fed, err := fromModel(FederationModel{ID: "fed-1", Name: "Federation One"})
	if err != nil {
		t.Fatalf("from model: %v", err)
	}
	if fed.Members == nil || fed.OpenInvitations == nil {
		t.Fatalf("expected empty collections, got %+v", fed)
	}
}

func TestMigrationsAreEmbedded(t *testing.T) {
	migrations, err := Migrations()
	if err != nil {
		t.Fatalf("migrations: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatalf("expected embedded migrations")
	}
	if migrations[0].Name != "0001_federations.sql" {
		t.Fatalf("unexpected first migration %q", migrations[0].Name)
	}
	if !strings.Contains(migrations[0].SQL, "CREATE TABLE IF NOT EXISTS federations") {
		t.Fatalf("migration does not create the federations table")
	}
}

func TestRepositoryWithoutDB(t *testing.T) {
	repo := NewFederationRepository(nil)
	if _, err := repo.FindAll(t.Context()); !errors.Is(err, errDBUnavailable) {
		t.Fatalf("expected errDBUnavailable, got %v", err)
	}
}
