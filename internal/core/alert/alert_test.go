package alert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(title, at, priority string) Notification {
	return Notification{Title: title, Message: title + " body", RawPriority: priority, TimeLabel: at}
}

func TestClassify_known_labels(t *testing.T) {
	tests := []struct {
		raw  string
		want Level
	}{
		{"critica", LevelCritical},
		{"alta", LevelHigh},
		{"media", LevelNormal},
		{"baja", LevelLow},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.raw))
		})
	}
}

func TestClassify_unknown_labels_fall_back_to_normal(t *testing.T) {
	for _, raw := range []string{"", "Critica", "CRITICA", "critical", "high", " alta", "urgent", "baja "} {
		assert.Equal(t, LevelNormal, Classify(raw), "raw=%q", raw)
	}
}

func TestParseLevel_round_trips_String(t *testing.T) {
	for _, l := range Levels() {
		got, err := ParseLevel(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, got)
	}

	_, err := ParseLevel("urgent")
	assert.Error(t, err)
}

func TestLevel_channel_parameters(t *testing.T) {
	assert.Equal(t, SeverityDanger, LevelCritical.Severity())
	assert.Equal(t, SeverityWarning, LevelHigh.Severity())
	assert.Equal(t, SeverityInfo, LevelNormal.Severity())
	assert.Equal(t, SeverityInfo, LevelLow.Severity())

	assert.Equal(t, 8*time.Second, LevelCritical.BannerDuration())
	assert.Equal(t, 5*time.Second, LevelHigh.BannerDuration())

	assert.Equal(t, 15*time.Second, LevelCritical.PushTimeout())
	assert.Equal(t, 8*time.Second, LevelLow.PushTimeout())

	assert.True(t, LevelCritical.RequiresInteraction())
	assert.False(t, LevelHigh.RequiresInteraction())

	assert.Equal(t, "deskbell-high", LevelHigh.PushTag())
}

func TestDiff_same_snapshot_is_empty(t *testing.T) {
	s := []Notification{item("T1", "10:00", "critica"), item("T2", "10:05", "alta")}
	assert.Empty(t, Diff(s, s))
}

func TestDiff_reports_only_novel_identity(t *testing.T) {
	s1 := []Notification{item("T1", "10:00", "critica")}
	x := item("T2", "10:05", "alta")
	s2 := append(append([]Notification{}, s1...), x)

	assert.Equal(t, []Notification{x}, Diff(s2, s1))
}

func TestDiff_identity_ignores_other_fields(t *testing.T) {
	prev := []Notification{item("T1", "10:00", "baja")}
	cur := []Notification{{Title: "T1", TimeLabel: "10:00", Message: "changed", RawPriority: "critica"}}

	assert.Empty(t, Diff(cur, prev))
}

func TestDiff_time_label_change_is_new(t *testing.T) {
	prev := []Notification{item("T1", "10:00", "alta")}
	cur := []Notification{item("T1", "Ahora", "alta")}

	assert.Len(t, Diff(cur, prev), 1)
}

func TestDeduplicator_Observe_replaces_state_each_cycle(t *testing.T) {
	d := NewDeduplicator()
	t1 := item("T1", "10:00", "critica")
	t2 := item("T2", "10:05", "alta")

	fresh := d.Observe(Snapshot{Items: []Notification{t1}})
	assert.Equal(t, []Notification{t1}, fresh)

	fresh = d.Observe(Snapshot{Items: []Notification{t1, t2}})
	assert.Equal(t, []Notification{t2}, fresh)

	// Nothing new still replaces the remembered snapshot.
	fresh = d.Observe(Snapshot{Items: []Notification{t2}})
	assert.Empty(t, fresh)
	assert.Equal(t, []Notification{t2}, d.Previous())

	// t1 left and came back, so it is new again.
	fresh = d.Observe(Snapshot{Items: []Notification{t1, t2}})
	assert.Equal(t, []Notification{t1}, fresh)
}

func TestDeduplicator_empty_snapshot_clears_state(t *testing.T) {
	d := NewDeduplicator()
	t1 := item("T1", "10:00", "critica")

	d.Observe(Snapshot{Items: []Notification{t1}})
	assert.Empty(t, d.Observe(Snapshot{}))
	assert.Empty(t, d.Previous())
	assert.Empty(t, d.Observe(Snapshot{}))

	assert.Equal(t, []Notification{t1}, d.Observe(Snapshot{Items: []Notification{t1}}))
}

func TestDeduplicator_Previous_is_a_copy(t *testing.T) {
	d := NewDeduplicator()
	items := []Notification{item("T1", "10:00", "alta")}
	d.Observe(Snapshot{Items: items})

	items[0].Title = "mutated"
	prev := d.Previous()
	prev[0].Title = "also mutated"

	assert.Equal(t, "T1", d.Previous()[0].Title)
}

func TestSnapshot_helpers(t *testing.T) {
	assert.True(t, Snapshot{}.Empty())
	s := Snapshot{Items: []Notification{item("a", "1", "")}, Aggregates: Aggregates{PendingForUser: IntPtr(3)}}
	assert.False(t, s.Empty())
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 3, *s.Aggregates.PendingForUser)
	assert.Equal(t, LevelNormal, s.Items[0].Level())
}
