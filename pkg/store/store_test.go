package store

import (
	"sync"
	"testing"
	"time"

	"sparkchat/pkg/models"
)

func openTestDB(t *testing.T) {
	t.Helper()
	if err := Open(t.TempDir()); err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = Close() })
}

func TestStore_Users(t *testing.T) {
	openTestDB(t)

	u := models.User{Identity: "alice", Name: "Alice", CredentialHash: "h", TS: time.Now().UnixNano()}
	if err := CreateUser(u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := CreateUser(u); err != ErrConflict {
		t.Fatalf("expected ErrConflict on duplicate, got %v", err)
	}

	got, err := GetUser("alice")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Name != "Alice" {
		t.Fatalf("expected name Alice, got %q", got.Name)
	}
	if _, err := GetUser("nobody"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	got.Name = "Alicia"
	if err := PutUser(got); err != nil {
		t.Fatalf("PutUser: %v", err)
	}
	got, _ = GetUser("alice")
	if got.Name != "Alicia" {
		t.Fatalf("update not applied, name %q", got.Name)
	}

	found, err := LookupUsers([]string{"alice", "nobody", "ghost"})
	if err != nil {
		t.Fatalf("LookupUsers: %v", err)
	}
	if len(found) != 1 || found[0].Identity != "alice" {
		t.Fatalf("expected only alice, got %+v", found)
	}
}

func TestStore_CreateUserConcurrent(t *testing.T) {
	openTestDB(t)

	const attempts = 16
	u := models.User{Identity: "alice", CredentialHash: "h", TS: 1}
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- CreateUser(u)
		}()
	}
	wg.Wait()
	close(errs)

	var created, conflicts int
	for err := range errs {
		switch err {
		case nil:
			created++
		case ErrConflict:
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if created != 1 {
		t.Fatalf("expected exactly one successful create, got %d", created)
	}
	if conflicts != attempts-1 {
		t.Fatalf("expected %d conflicts, got %d", attempts-1, conflicts)
	}
}

func TestStore_Conversations(t *testing.T) {
	openTestDB(t)

	msgs := []models.Message{
		{ID: "m1", Sender: "alice", Receiver: "bob", Text: "one", TS: 100},
		{ID: "m2", Sender: "bob", Receiver: "alice", Text: "two", TS: 200},
		{ID: "m3", Sender: "alice", Receiver: "bob", Text: "three", TS: 300},
		{ID: "m4", Sender: "alice", Receiver: "carol", Text: "elsewhere", TS: 150},
	}
	for _, m := range msgs {
		if err := SaveMessage(m); err != nil {
			t.Fatalf("SaveMessage %s: %v", m.ID, err)
		}
	}

	t.Run("MergedBothDirections", func(t *testing.T) {
		out, err := ListConversation("alice", "bob", 0)
		if err != nil {
			t.Fatalf("ListConversation: %v", err)
		}
		if len(out) != 3 {
			t.Fatalf("expected 3 messages, got %d", len(out))
		}
		for i := 1; i < len(out); i++ {
			if out[i-1].TS > out[i].TS {
				t.Fatalf("not sorted by ts: %d before %d", out[i-1].TS, out[i].TS)
			}
		}
		// Both orderings of the pair resolve to the same range.
		rev, err := ListConversation("bob", "alice", 0)
		if err != nil {
			t.Fatalf("ListConversation reversed: %v", err)
		}
		if len(rev) != 3 {
			t.Fatalf("reversed lookup returned %d messages, want 3", len(rev))
		}
	})

	t.Run("LimitKeepsNewest", func(t *testing.T) {
		out, err := ListConversation("alice", "bob", 2)
		if err != nil {
			t.Fatalf("ListConversation: %v", err)
		}
		if len(out) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(out))
		}
		// The cap drops the oldest end of the range.
		if out[0].ID != "m2" || out[1].ID != "m3" {
			t.Fatalf("expected newest tail m2,m3, got %s,%s", out[0].ID, out[1].ID)
		}
	})

	t.Run("GroupHistory", func(t *testing.T) {
		gm := models.Message{ID: "m5", Sender: "alice", Receiver: "g1", IsGroup: true, Text: "hey all", TS: 400}
		if err := SaveMessage(gm); err != nil {
			t.Fatalf("SaveMessage: %v", err)
		}
		out, err := ListConversation("alice", "g1", 0)
		if err != nil {
			t.Fatalf("ListConversation: %v", err)
		}
		if len(out) != 1 || out[0].ID != "m5" {
			t.Fatalf("expected group message, got %+v", out)
		}
	})
}

func TestStore_DeleteMessage(t *testing.T) {
	openTestDB(t)

	m := models.Message{ID: "m1", Sender: "alice", Receiver: "bob", Text: "oops", TS: 100}
	if err := SaveMessage(m); err != nil {
		t.Fatalf("SaveMessage: %v", err)
	}

	if _, err := DeleteMessage("m1", "bob"); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden for non-sender, got %v", err)
	}
	// Refused delete leaves the record intact.
	if _, err := GetMessage("m1"); err != nil {
		t.Fatalf("message should survive refused delete: %v", err)
	}

	deleted, err := DeleteMessage("m1", "alice")
	if err != nil {
		t.Fatalf("DeleteMessage: %v", err)
	}
	if deleted.Receiver != "bob" {
		t.Fatalf("expected deleted message to carry receiver, got %q", deleted.Receiver)
	}
	// Locator and conversation entry disappear together.
	if _, err := GetMessage("m1"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := DeleteMessage("m1", "alice"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}

	out, err := ListConversation("alice", "bob", 0)
	if err != nil {
		t.Fatalf("ListConversation: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("conversation should be empty after delete, got %d", len(out))
	}
}

func TestStore_Groups(t *testing.T) {
	openTestDB(t)

	g := models.Group{ID: "g1", Name: "trip", Members: []string{"alice", "bob"}, TS: 1}
	if err := SaveGroup(g); err != nil {
		t.Fatalf("SaveGroup: %v", err)
	}
	if err := SaveGroup(models.Group{ID: "g2", Name: "work", Members: []string{"carol"}, TS: 2}); err != nil {
		t.Fatalf("SaveGroup: %v", err)
	}

	got, err := GetGroup("g1")
	if err != nil {
		t.Fatalf("GetGroup: %v", err)
	}
	if !got.HasMember("bob") {
		t.Fatalf("expected bob in g1")
	}
	if _, err := GetGroup("missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	mine, err := ListGroupsFor("alice")
	if err != nil {
		t.Fatalf("ListGroupsFor: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != "g1" {
		t.Fatalf("expected only g1 for alice, got %+v", mine)
	}
}

func TestStore_StatusFeed(t *testing.T) {
	openTestDB(t)

	for i := 0; i < FeedLimit+10; i++ {
		s := models.Status{ID: "s", Author: "alice", Text: "x", TS: int64(i + 1)}
		if err := SaveStatus(s); err != nil {
			t.Fatalf("SaveStatus: %v", err)
		}
	}

	feed, err := ListStatusFeed(0)
	if err != nil {
		t.Fatalf("ListStatusFeed: %v", err)
	}
	if len(feed) != FeedLimit {
		t.Fatalf("expected %d statuses, got %d", FeedLimit, len(feed))
	}
	for i := 1; i < len(feed); i++ {
		if feed[i-1].TS < feed[i].TS {
			t.Fatalf("feed not newest-first at index %d", i)
		}
	}

	purged, err := PurgeStatusesBefore(51)
	if err != nil {
		t.Fatalf("PurgeStatusesBefore: %v", err)
	}
	if purged != 50 {
		t.Fatalf("expected 50 purged, got %d", purged)
	}
	feed, _ = ListStatusFeed(0)
	if len(feed) != 10 {
		t.Fatalf("expected 10 statuses left, got %d", len(feed))
	}
}
