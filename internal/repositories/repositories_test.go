package repositories

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messenger/internal/models"
)

func TestIdentityRepoCreateAndLookup(t *testing.T) {
	repo := NewIdentityRepo()

	require.NoError(t, repo.Create(models.Identity{Username: "alice", UserID: "111111"}))
	require.ErrorIs(t, repo.Create(models.Identity{Username: "alice", UserID: "222222"}), ErrUsernameTaken)
	require.ErrorIs(t, repo.Create(models.Identity{Username: "bob", UserID: "111111"}), ErrUserIDTaken)

	byName, err := repo.GetByUsername("alice")
	require.NoError(t, err)
	byID, err := repo.GetByUserID("111111")
	require.NoError(t, err)
	assert.Same(t, byName, byID)

	_, err = repo.GetByUsername("Alice")
	assert.ErrorIs(t, err, ErrIdentityNotFound)
	assert.True(t, repo.UserIDExists("111111"))
	assert.False(t, repo.UserIDExists("222222"))
}

func TestIdentityRepoLiveUpdatesAndListCopies(t *testing.T) {
	repo := NewIdentityRepo()
	require.NoError(t, repo.Create(models.Identity{Username: "carol", UserID: "333333"}))
	require.NoError(t, repo.Create(models.Identity{Username: "dave", UserID: "444444"}))

	live, err := repo.GetByUsername("carol")
	require.NoError(t, err)
	live.Banned = true

	list := repo.List()
	require.Len(t, list, 2)
	assert.Equal(t, "carol", list[0].Username)
	assert.True(t, list[0].Banned)

	list[0].Banned = false
	again, _ := repo.GetByUsername("carol")
	assert.True(t, again.Banned)
	assert.Equal(t, 2, repo.Count())
}

func TestPresenceRepoBidirectional(t *testing.T) {
	repo := NewPresenceRepo()
	now := time.Now()

	require.NoError(t, repo.Add(models.Session{ConnID: "c1", Username: "alice", UserID: "111111", JoinedAt: now}))
	require.NoError(t, repo.Add(models.Session{ConnID: "c2", Username: "bob", UserID: "222222", JoinedAt: now}))
	require.ErrorIs(t, repo.Add(models.Session{ConnID: "c1", Username: "carol", UserID: "333333"}), ErrSessionExists)
	require.ErrorIs(t, repo.Add(models.Session{ConnID: "c3", Username: "alice", UserID: "111111"}), ErrSessionExists)

	connID, ok := repo.ConnForUser("222222")
	require.True(t, ok)
	assert.Equal(t, "c2", connID)

	session, ok := repo.ByConn("c1")
	require.True(t, ok)
	assert.Equal(t, "alice", session.Username)

	list := repo.List()
	require.Len(t, list, 2)
	assert.Equal(t, "c1", list[0].ConnID)

	removed, ok := repo.Remove("c1")
	require.True(t, ok)
	assert.Equal(t, "alice", removed.Username)
	_, ok = repo.Remove("c1")
	assert.False(t, ok)
	_, ok = repo.ConnForUser("111111")
	assert.False(t, ok)
	assert.Equal(t, 1, repo.Count())
}

func TestChatRepoPrivatePairUniqueness(t *testing.T) {
	repo := NewChatRepo()
	chat := models.Conversation{ID: "abcd1234", Kind: models.KindPrivate, CreatorID: "111111", Members: []string{"111111", "222222"}}

	require.NoError(t, repo.CreatePrivate(chat))
	assert.True(t, repo.PrivateExists("222222", "111111"))

	reversed := models.Conversation{ID: "zzzz0000", Kind: models.KindPrivate, CreatorID: "222222", Members: []string{"222222", "111111"}}
	require.ErrorIs(t, repo.CreatePrivate(reversed), ErrChatExists)
	require.Error(t, repo.CreatePrivate(models.Conversation{ID: "x", Members: []string{"111111"}}))

	assert.True(t, repo.Delete("abcd1234"))
	assert.False(t, repo.PrivateExists("111111", "222222"))
	assert.False(t, repo.Delete("abcd1234"))
	require.NoError(t, repo.CreatePrivate(reversed))
}

func TestChatRepoGroupsAndListing(t *testing.T) {
	repo := NewChatRepo()
	require.NoError(t, repo.CreateGroup(models.Conversation{ID: "g1", Kind: models.KindGroup, Name: "team", CreatorID: "111111", Members: []string{"111111", "222222"}}))
	require.NoError(t, repo.CreateGroup(models.Conversation{ID: "g2", Kind: models.KindGroup, Name: "other", CreatorID: "333333", Members: []string{"333333", "222222"}}))
	require.NoError(t, repo.CreatePrivate(models.Conversation{ID: "p1", Kind: models.KindPrivate, Members: []string{"111111", "222222"}}))

	groups := repo.ListGroupsForUser("222222")
	require.Len(t, groups, 2)
	assert.Equal(t, "g1", groups[0].ID)
	assert.Len(t, repo.ListGroupsForUser("111111"), 1)
	assert.Len(t, repo.ListPrivateForUser("222222"), 1)

	_, err := repo.GetGroup("p1")
	assert.ErrorIs(t, err, ErrGroupNotFound)
	_, err = repo.GetPrivate("g1")
	assert.ErrorIs(t, err, ErrChatNotFound)

	live, err := repo.GetGroup("g1")
	require.NoError(t, err)
	live.RemoveMember("222222")
	assert.Len(t, repo.ListGroupsForUser("222222"), 1)

	assert.True(t, repo.IDExists("p1"))
	assert.Equal(t, 2, repo.CountGroups())
	assert.Equal(t, 1, repo.CountPrivate())
}

func TestMessageRepoOrderingAndIDs(t *testing.T) {
	repo := NewMessageRepo()
	first := repo.Append(models.Message{Channel: "general", Text: "one"})
	second := repo.Append(models.Message{Channel: "games", Text: "two"})
	third := repo.Append(models.Message{Channel: "general", Text: "three"})

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, int64(3), third.ID)

	recent := repo.Recent("general", 50)
	require.Len(t, recent, 2)
	assert.Equal(t, "one", recent[0].Text)
	assert.Equal(t, "three", recent[1].Text)

	limited := repo.Recent("general", 1)
	require.Len(t, limited, 1)
	assert.Equal(t, "three", limited[0].Text)

	require.NoError(t, repo.Delete("general", 3))
	fourth := repo.Append(models.Message{Channel: "general", Text: "four"})
	assert.Equal(t, int64(4), fourth.ID)
}

func TestMessageRepoPointOperationsRespectChannel(t *testing.T) {
	repo := NewMessageRepo()
	msg := repo.Append(models.Message{Channel: "general", Text: "hello"})

	_, err := repo.Get("games", msg.ID)
	assert.ErrorIs(t, err, ErrMessageNotFound)
	assert.ErrorIs(t, repo.Delete("games", msg.ID), ErrMessageNotFound)

	edited, err := repo.Edit("general", msg.ID, "hello again")
	require.NoError(t, err)
	assert.True(t, edited.Edited)
	assert.Equal(t, "hello again", edited.Text)

	repo.Append(models.Message{Channel: "chat1", Text: "a"})
	repo.Append(models.Message{Channel: "chat1", Text: "b"})
	assert.Equal(t, 2, repo.DeleteChannel("chat1"))
	assert.Empty(t, repo.Recent("chat1", 50))
	assert.Equal(t, 1, repo.Count())
}
