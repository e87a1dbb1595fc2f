package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vpetrenko/jobfit/internal/core/domain"
)

type candidateTier struct {
	ref    domain.DocumentRef
	source domain.DocumentSource
}

type resolvedCandidate struct {
	text   domain.ExtractedText
	source domain.DocumentSource
}

// candidateTiers builds the resolution order: a temporary document of either
// kind beats any profile-stored document, and a resume beats a network
// profile within the same origin tier.
func candidateTiers(req domain.ScoreRequest, profile *domain.Profile) []candidateTier {
	tiers := make([]candidateTier, 0, 4)

	if req.TemporaryResume != nil && req.TemporaryResume.Locator != "" {
		tiers = append(tiers, candidateTier{
			ref: domain.DocumentRef{
				Kind:    domain.KindResume,
				Locator: req.TemporaryResume.Locator,
				Origin:  domain.OriginTemporary,
			},
			source: domain.SourceTemporaryResume,
		})
	}
	if req.TemporaryNetworkProfile != nil && req.TemporaryNetworkProfile.Locator != "" {
		tiers = append(tiers, candidateTier{
			ref: domain.DocumentRef{
				Kind:    domain.KindNetworkProfile,
				Locator: req.TemporaryNetworkProfile.Locator,
				Origin:  domain.OriginTemporary,
			},
			source: domain.SourceTemporaryNetwork,
		})
	}
	if profile.ResumePath != "" {
		tiers = append(tiers, candidateTier{
			ref: domain.DocumentRef{
				Kind:    domain.KindResume,
				Locator: profile.ResumePath,
				Origin:  domain.OriginProfile,
			},
			source: domain.SourceProfileResume,
		})
	}
	if profile.NetworkProfilePath != "" {
		tiers = append(tiers, candidateTier{
			ref: domain.DocumentRef{
				Kind:    domain.KindNetworkProfile,
				Locator: profile.NetworkProfilePath,
				Origin:  domain.OriginProfile,
			},
			source: domain.SourceProfileNetwork,
		})
	}
	return tiers
}

// resolveCandidate walks the precedence chain and returns the first tier
// whose document extracts usable text. A failed tier falls through to the
// next one; only an exhausted chain fails the run.
func (uc *ScoreUseCase) resolveCandidate(
	ctx context.Context,
	req domain.ScoreRequest,
	profile *domain.Profile,
) (resolvedCandidate, error) {
	tiers := candidateTiers(req, profile)
	if len(tiers) == 0 {
		return resolvedCandidate{}, domain.WrapError(
			domain.ErrMissingCandidateDocument,
			"resolve candidate document",
			errors.New("no resume or network profile supplied or stored"),
		)
	}

	for _, tier := range tiers {
		if err := ctx.Err(); err != nil {
			return resolvedCandidate{}, err
		}

		text, err := uc.extractor.Extract(ctx, tier.ref)
		if err != nil {
			slog.Warn("candidate_tier_skipped",
				"profile_id", req.ProfileID,
				"kind", string(tier.ref.Kind),
				"origin", string(tier.ref.Origin),
				"error", err,
			)
			continue
		}
		return resolvedCandidate{text: text, source: tier.source}, nil
	}

	return resolvedCandidate{}, domain.WrapError(
		domain.ErrMissingCandidateDocument,
		"resolve candidate document",
		errors.New("all candidate document tiers failed extraction"),
	)
}

// temporaryRefs lists every temporary storage object supplied with the
// request, whether or not the resolver ended up selecting it.
func temporaryRefs(req domain.ScoreRequest) []domain.DocumentRef {
	refs := make([]domain.DocumentRef, 0, 3)
	if req.JobDescription.Origin == domain.OriginTemporary && req.JobDescription.Locator != "" {
		refs = append(refs, req.JobDescription)
	}
	if req.TemporaryResume != nil && req.TemporaryResume.Locator != "" {
		refs = append(refs, *req.TemporaryResume)
	}
	if req.TemporaryNetworkProfile != nil && req.TemporaryNetworkProfile.Locator != "" {
		refs = append(refs, *req.TemporaryNetworkProfile)
	}
	return refs
}
