package sizing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shorebytelabs/nailsbyabri/internal/domain"
	"github.com/shorebytelabs/nailsbyabri/pkg/errors"
)

func fullSizes() domain.FingerSizes {
	return domain.FingerSizes{
		domain.FingerThumb:  "4",
		domain.FingerIndex:  "6",
		domain.FingerMiddle: "5",
		domain.FingerRing:   "6",
		domain.FingerPinky:  "8",
	}
}

func TestNewResolverFiltersEmptyProfiles(t *testing.T) {
	r := NewResolver([]domain.SizeProfile{
		{ID: "empty", Name: "Empty"},
		{ID: "full", Name: "Full", Values: fullSizes()},
	})

	eligible := r.EligibleProfiles()
	require.Len(t, eligible, 1)
	assert.Equal(t, "full", eligible[0].ID)
}

func TestResolveSavedUsesProfileValues(t *testing.T) {
	r := NewResolver([]domain.SizeProfile{
		{ID: "p1", Name: "Mine", Values: fullSizes()},
	})
	set := domain.NailSetDraft{
		SelectedSizingOption: domain.SizingOptionSaved,
		SelectedProfileID:    "p1",
		Sizes:                domain.FingerSizes{domain.FingerThumb: "9"},
	}

	got := r.Resolve(&set, nil)
	assert.Equal(t, "4", got[domain.FingerThumb])
}

func TestResolveProfileFallbackChain(t *testing.T) {
	r := NewResolver([]domain.SizeProfile{
		{ID: "first", Name: "First", Values: fullSizes()},
		{ID: "second", Name: "Second", Values: fullSizes()},
	})

	// Set id wins.
	set := domain.NailSetDraft{SelectedSizingOption: domain.SizingOptionSaved, SelectedProfileID: "second"}
	assert.Equal(t, "second", r.ResolveProfile(&set, nil).ID)

	// Shadow id when the set has none.
	set.SelectedProfileID = ""
	shadow := &domain.CustomerSizes{ProfileID: "second"}
	assert.Equal(t, "second", r.ResolveProfile(&set, shadow).ID)

	// First eligible when neither resolves.
	assert.Equal(t, "first", r.ResolveProfile(&set, nil).ID)
}

func TestResolveManualUsesOwnSizes(t *testing.T) {
	r := NewResolver(nil)
	set := domain.NailSetDraft{
		SelectedSizingOption: domain.SizingOptionManual,
		Sizes:                fullSizes(),
	}

	got := r.Resolve(&set, nil)
	assert.Equal(t, fullSizes(), got)

	// Resolve clones; mutating the result leaves the set untouched.
	got[domain.FingerThumb] = "99"
	assert.Equal(t, "4", set.Sizes[domain.FingerThumb])
}

func TestValidateSizingHelpAlwaysPasses(t *testing.T) {
	r := NewResolver(nil)
	set := domain.NailSetDraft{
		SelectedSizingOption: domain.SizingOptionManual,
		RequiresSizingHelp:   true,
	}
	assert.NoError(t, r.Validate(&set, nil))
}

func TestValidateSavedNeedsProfile(t *testing.T) {
	r := NewResolver(nil)
	set := domain.NailSetDraft{SelectedSizingOption: domain.SizingOptionSaved}

	err := r.Validate(&set, nil)
	require.Error(t, err)
	verr, ok := err.(*errors.ErrValidation)
	require.True(t, ok)
	assert.Equal(t, domain.StepSize, verr.Step)
}

func TestValidateManualNeedsAllFingers(t *testing.T) {
	r := NewResolver(nil)
	set := domain.NailSetDraft{
		SelectedSizingOption: domain.SizingOptionManual,
		Sizes: domain.FingerSizes{
			domain.FingerThumb: "4",
			domain.FingerIndex: "6",
		},
	}

	err := r.Validate(&set, nil)
	require.Error(t, err)
	verr := err.(*errors.ErrValidation)
	assert.Contains(t, verr.Fields, "middle")
	assert.Contains(t, verr.Fields, "ring")
	assert.Contains(t, verr.Fields, "pinky")
	assert.NotContains(t, verr.Fields, "thumb")
}

func TestValidateManualAcceptsSizingPhoto(t *testing.T) {
	r := NewResolver(nil)
	set := domain.NailSetDraft{
		SelectedSizingOption: domain.SizingOptionManual,
		SizingUploads: []domain.UploadReference{
			{FileName: "hand.jpg", State: domain.UploadStateUploaded, RemoteURL: "https://cdn/hand.jpg"},
		},
	}
	assert.NoError(t, r.Validate(&set, nil))
}

func TestValidateLegacyCameraNormalizesToManual(t *testing.T) {
	r := NewResolver(nil)
	set := domain.NailSetDraft{
		SelectedSizingOption: domain.SizingOptionCamera,
		Sizes:                fullSizes(),
	}
	assert.NoError(t, r.Validate(&set, nil))
}
