package mongo

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
)

func changeFixture(t *testing.T, op, coll string, id interface{}) changeDoc {
	t.Helper()
	raw, err := bson.Marshal(bson.M{
		"operationType": op,
		"ns":            bson.M{"coll": coll},
		"documentKey":   bson.M{"_id": id},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc changeDoc
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return doc
}

func TestToChangeEvent(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	cases := []struct {
		name string
		doc  changeDoc
		want domain.ChangeEvent
	}{
		{
			name: "like deleted",
			doc:  changeFixture(t, "delete", collectionLikes, domain.LikeKey("u1", 42)),
			want: domain.ChangeEvent{Relation: domain.RelationLikes, Op: domain.OpDelete, UserID: "u1", CheatID: 42, At: at},
		},
		{
			name: "badge unlocked",
			doc:  changeFixture(t, "insert", collectionUserBadges, domain.UserBadgeKey("u2", 3)),
			want: domain.ChangeEvent{Relation: domain.RelationUserBadges, Op: domain.OpInsert, UserID: "u2", BadgeID: 3, At: at},
		},
		{
			name: "subscription replaced",
			doc:  changeFixture(t, "replace", collectionSubscriptions, "u3"),
			want: domain.ChangeEvent{Relation: domain.RelationSubscriptions, Op: domain.OpUpdate, UserID: "u3", At: at},
		},
	}

	for _, tc := range cases {
		got, err := toChangeEvent(tc.doc, at)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%s: want %+v, got %+v", tc.name, tc.want, got)
		}
	}
}

func TestToChangeEvent_Rejects(t *testing.T) {
	bad := []changeDoc{
		changeFixture(t, "drop", collectionLikes, "u1:1"),
		changeFixture(t, "insert", collectionLikes, int64(7)),
		changeFixture(t, "insert", collectionLikes, "no-separator"),
		changeFixture(t, "insert", "sessions", "x"),
	}
	for i, doc := range bad {
		if _, err := toChangeEvent(doc, time.Now()); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}

func TestNextResume(t *testing.T) {
	token, err := bson.Marshal(bson.M{"_data": "8263A1"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resume := bson.Raw(token)
	historyLost := mongo.CommandError{Code: codeChangeStreamHistoryLost, Name: "ChangeStreamHistoryLost"}

	tests := []struct {
		name     string
		resume   bson.Raw
		err      error
		wantKeep bool
		wantGap  bool
	}{
		{name: "history lost on open", resume: resume, err: fmt.Errorf("open change stream: %w", historyLost), wantGap: true},
		{name: "history lost mid stream", resume: resume, err: historyLost, wantGap: true},
		{name: "fatal change stream error", resume: resume, err: mongo.CommandError{Code: codeChangeStreamFatalError}, wantGap: true},
		{name: "network error keeps token", resume: resume, err: errors.New("connection reset"), wantKeep: true},
		{name: "other server error keeps token", resume: resume, err: mongo.CommandError{Code: 11600, Name: "InterruptedAtShutdown"}, wantKeep: true},
		{name: "no token yet", resume: nil, err: historyLost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, gap := nextResume(tt.resume, tt.err)
			if gap != tt.wantGap {
				t.Errorf("gap = %v, want %v", gap, tt.wantGap)
			}
			if kept := next != nil; kept != tt.wantKeep {
				t.Errorf("token kept = %v, want %v", kept, tt.wantKeep)
			}
		})
	}
}
