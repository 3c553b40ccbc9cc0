package types

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestArticleToDict(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	updated := time.Date(2025, 3, 2, 11, 30, 0, 0, time.UTC)
	article := &Article{
		ID:           uuid.New(),
		Title:        "Caffeine",
		Synthesis:    "A stimulant.",
		CreationDate: created,
		UpdateDate:   updated,
		UserID:       uuid.New(),
		References: []*Reference{
			{ID: uuid.New(), Description: "Coffee Science"},
			{ID: uuid.New(), Description: "Pharmacology 101"},
		},
	}

	dict := article.ToDict()
	if dict["title"] != "Caffeine" {
		t.Fatalf("title: got=%v", dict["title"])
	}
	if dict["creation_date"] != "2025-03-01T10:00:00Z" {
		t.Fatalf("creation_date: got=%v", dict["creation_date"])
	}
	if dict["update_date"] != "2025-03-02T11:30:00Z" {
		t.Fatalf("update_date: got=%v", dict["update_date"])
	}
	references, ok := dict["references"].([]string)
	if !ok || len(references) != 2 {
		t.Fatalf("references: got=%v", dict["references"])
	}
	if references[0] != "Coffee Science" || references[1] != "Pharmacology 101" {
		t.Fatalf("reference descriptions: got=%v", references)
	}
}

func TestArticleFromDictNewSetsCreationDate(t *testing.T) {
	article := &Article{ID: uuid.New()}
	article.FromDict(map[string]interface{}{
		"title":     "Caffeine",
		"synthesis": "A stimulant.",
	}, true)

	if article.Title != "Caffeine" {
		t.Fatalf("title: got=%q", article.Title)
	}
	if article.CreationDate.IsZero() {
		t.Fatalf("creation date not set on new article")
	}
	if article.UpdateDate.IsZero() {
		t.Fatalf("update date not set")
	}
}

func TestArticleFromDictUpdateKeepsCreationDate(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	article := &Article{ID: uuid.New(), Title: "Old", CreationDate: created}
	article.FromDict(map[string]interface{}{"synthesis": "edited"}, false)

	if !article.CreationDate.Equal(created) {
		t.Fatalf("creation date moved on update: got=%v", article.CreationDate)
	}
	if article.Title != "Old" {
		t.Fatalf("title changed without input: got=%q", article.Title)
	}
	if article.Synthesis != "edited" {
		t.Fatalf("synthesis: got=%q", article.Synthesis)
	}
	if article.UpdateDate.IsZero() {
		t.Fatalf("update date not set")
	}
}

func TestUserToDictPrivacy(t *testing.T) {
	externalLogin := "oauth:remote-123"
	user := &User{
		ID:            uuid.New(),
		Username:      "alice",
		Email:         "alice@example.com",
		ExternalLogin: &externalLogin,
	}

	public := user.ToDict(false)
	if _, present := public["email"]; present {
		t.Fatalf("email leaked in public view")
	}
	if _, present := public["external_login"]; present {
		t.Fatalf("external login leaked in public view")
	}

	private := user.ToDict(true)
	if private["email"] != "alice@example.com" {
		t.Fatalf("email: got=%v", private["email"])
	}
	if private["external_login"] != externalLogin {
		t.Fatalf("external_login: got=%v", private["external_login"])
	}

	links, ok := private["_links"].(map[string]interface{})
	if !ok {
		t.Fatalf("_links missing")
	}
	if links["self"] != "/api/users/"+user.ID.String() {
		t.Fatalf("self link: got=%v", links["self"])
	}
	if links["articles"] != "/api/articles/"+user.ID.String() {
		t.Fatalf("articles link: got=%v", links["articles"])
	}
}
