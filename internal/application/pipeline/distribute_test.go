package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mittenshop/fulfillment/internal/domain/manifest"
)

type memStore struct {
	files map[string][]byte
	err   error
}

func newMemStore() *memStore {
	return &memStore{files: make(map[string][]byte)}
}

func (m *memStore) Save(_ context.Context, name string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.files[name] = data
	return "mem://" + name, nil
}

type memSink struct {
	records []manifest.LabelRecord
	err     error
}

func (m *memSink) Submit(_ context.Context, rec manifest.LabelRecord) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, rec)
	return nil
}

func TestDistribute(t *testing.T) {
	svc := NewService(nil)
	res, err := svc.Convert(context.Background(), strings.NewReader(sampleExport()))
	require.NoError(t, err)

	t.Run("saves manifests and submits labels", func(t *testing.T) {
		store := newMemStore()
		sink := &memSink{}

		out, err := svc.Distribute(context.Background(), res, store, sink)
		require.NoError(t, err)

		intlName := res.RunID.String() + "/manifest_international.csv"
		usName := res.RunID.String() + "/manifest_us.csv"
		assert.Equal(t, "mem://"+intlName, out.InternationalLocation)
		assert.Equal(t, "mem://"+usName, out.USLocation)
		assert.Contains(t, store.files, intlName)
		assert.Contains(t, store.files, usName)

		require.Len(t, sink.records, 1)
		assert.Equal(t, "1001", sink.records[0].OrderNumber)
		assert.Equal(t, 1, out.LabelsSubmitted)
	})

	t.Run("nil collaborators are skipped", func(t *testing.T) {
		out, err := svc.Distribute(context.Background(), res, nil, nil)
		require.NoError(t, err)
		assert.Empty(t, out.InternationalLocation)
		assert.Zero(t, out.LabelsSubmitted)
	})

	t.Run("store failure aborts", func(t *testing.T) {
		store := newMemStore()
		store.err = errors.New("disk full")

		_, err := svc.Distribute(context.Background(), res, store, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
	})

	t.Run("sink failure aborts", func(t *testing.T) {
		sink := &memSink{err: errors.New("printer offline")}

		_, err := svc.Distribute(context.Background(), res, nil, sink)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "printer offline")
	})
}

func TestDistributeEmptyManifests(t *testing.T) {
	// A domestic-only export produces no manifest files at all.
	svc := NewService(nil)
	input := exportHeader + "\n" +
		`#1,r1,paid,Eczema Mitten - Cotton / Single / (140-150),1,,,Alice Tan,Addr,,Singapore,570123,,,SG,91234567` + "\n"

	res, err := svc.Convert(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	store := newMemStore()
	out, err := svc.Distribute(context.Background(), res, store, nil)
	require.NoError(t, err)

	assert.Empty(t, store.files)
	assert.Empty(t, out.InternationalLocation)
	assert.Empty(t, out.USLocation)
}
