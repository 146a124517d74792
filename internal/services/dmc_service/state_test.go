package dmc_service

import (
	"fmt"
	"testing"

	"github.com/iwtcode/dmcAdapter/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	snapshots []models.StatusSnapshot
	alerts    []models.AlertMessage
}

func (o *recordingObserver) OnStateChanged(snapshot models.StatusSnapshot) {
	o.snapshots = append(o.snapshots, snapshot)
}

func (o *recordingObserver) OnAlert(severity models.Severity, text string) {
	o.alerts = append(o.alerts, models.AlertMessage{Text: text, Severity: severity})
}

func TestAlertLogEvictsOldestAtCapacity(t *testing.T) {
	m := NewMachineState(5)

	for i := 0; i < 8; i++ {
		m.Alert(models.SeverityInfo, fmt.Sprintf("msg %d", i))
	}

	messages := m.Messages()
	require.Len(t, messages, 5, "log must hold exactly its capacity")
	assert.Equal(t, "msg 3", messages[0].Text, "oldest entries are evicted first")
	assert.Equal(t, "msg 7", messages[4].Text)
}

func TestSnapshotIsIsolatedFromMutations(t *testing.T) {
	m := NewMachineState(10)
	m.SetConnected(true, "192.168.0.50")
	m.UpdateStatus(map[string]models.AxisStatus{
		"A": {Position: 1.0},
	})

	snapshot := m.Snapshot()
	require.Equal(t, 1.0, snapshot.Axes["A"].Position)

	m.UpdateStatus(map[string]models.AxisStatus{
		"A": {Position: 99.0},
	})
	m.SetConnected(false, "")

	assert.Equal(t, 1.0, snapshot.Axes["A"].Position, "snapshot must not see later mutations")
	assert.True(t, snapshot.Connected)
}

func TestObserversReceiveSynchronousNotifications(t *testing.T) {
	m := NewMachineState(10)
	obs := &recordingObserver{}
	token := m.Subscribe(obs)

	m.SetConnected(true, "addr")
	m.UpdateStatus(map[string]models.AxisStatus{"A": {Position: 5}})
	m.Alert(models.SeverityWarn, "careful")

	require.Len(t, obs.snapshots, 2, "every state mutation notifies observers")
	assert.True(t, obs.snapshots[0].Connected)
	assert.Equal(t, 5.0, obs.snapshots[1].Axes["A"].Position)

	require.Len(t, obs.alerts, 1)
	assert.Equal(t, models.SeverityWarn, obs.alerts[0].Severity)

	m.Unsubscribe(token)
	m.SetConnected(false, "addr")
	assert.Len(t, obs.snapshots, 2, "unsubscribed observer receives nothing")
}

func TestMessagesReturnsCopy(t *testing.T) {
	m := NewMachineState(10)
	m.Alert(models.SeverityInfo, "one")

	first := m.Messages()
	first[0].Text = "tampered"

	assert.Equal(t, "one", m.Messages()[0].Text)
}
