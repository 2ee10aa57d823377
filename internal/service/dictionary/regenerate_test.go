package dictionary

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/lexicon/internal/domain"
	"github.com/heartmarshall/lexicon/internal/service/entrygen"
)

func TestService_Regenerate(t *testing.T) {
	t.Parallel()

	svc, d := newTestService()
	french := domain.LanguageConfig{SourceLanguage: "English", TargetLanguage: "French", DefinitionLanguage: "English"}
	existing := &domain.StoredEntry{ID: uuid.New(), Entry: testEntry("courir", french)}
	d.entries.GetByIDFunc = func(_ context.Context, id uuid.UUID) (*domain.StoredEntry, error) {
		assert.Equal(t, existing.ID, id)
		return existing, nil
	}
	d.generator.GenerateFunc = func(_ context.Context, headword string, langs domain.LanguageConfig, opts entrygen.Options) (*entrygen.Generated, error) {
		assert.Equal(t, "courir", headword)
		assert.Equal(t, french, langs, "same languages as the stored entry")
		assert.True(t, opts.Variation)
		e := testEntry("Courir", langs)
		e.Meanings[0].Definition = "to run (reworded)"
		return &entrygen.Generated{Entry: e}, nil
	}

	got, err := svc.Regenerate(context.Background(), existing.ID)
	require.NoError(t, err)

	assert.Equal(t, existing.ID, got.ID)
	assert.Equal(t, "courir", got.Entry.Headword, "stored headword is kept")
	assert.Equal(t, "to run (reworded)", got.Entry.Meanings[0].Definition)
	require.Len(t, d.entries.replaced, 1)
	assert.Equal(t, 1, d.tx.calls)
}

func TestService_Regenerate_NotFound(t *testing.T) {
	t.Parallel()

	svc, d := newTestService()

	_, err := svc.Regenerate(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, d.generator.callCount())
}

func TestService_Regenerate_FailureKeepsStoredEntry(t *testing.T) {
	t.Parallel()

	svc, d := newTestService()
	existing := &domain.StoredEntry{ID: uuid.New(), Entry: testEntry("correr", testLangs)}
	d.entries.GetByIDFunc = func(context.Context, uuid.UUID) (*domain.StoredEntry, error) { return existing, nil }
	d.generator.GenerateFunc = func(context.Context, string, domain.LanguageConfig, entrygen.Options) (*entrygen.Generated, error) {
		return nil, &domain.RemoteError{Provider: "openai", Err: context.Canceled}
	}

	_, err := svc.Regenerate(context.Background(), existing.ID)
	assert.ErrorIs(t, err, domain.ErrRemoteCallFailed)
	assert.Empty(t, d.entries.replaced)
}
