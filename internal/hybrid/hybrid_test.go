package hybrid

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kjc-dev/ghhier/internal/apperrors"
	"github.com/kjc-dev/ghhier/internal/cache"
)

func TestNodeIDKeyFormat(t *testing.T) {
	if got := nodeIDKey("acme", "svc", 42); got != "acme/svc#42" {
		t.Fatalf("got %q", got)
	}
}

func TestFeatureProbeCaching(t *testing.T) {
	c := &Client{
		log:      zap.NewNop(),
		features: cache.New[bool](time.Minute, 10),
		nodeIDs:  cache.New[string](time.Minute, 10),
	}
	defer c.Close()

	if c.featureKnownUnavailable(apperrors.FeatureSubIssues) {
		t.Fatal("expected no cached result before any probe")
	}

	c.recordFeatureProbe(apperrors.FeatureSubIssues, &apperrors.FeatureUnavailable{Feature: apperrors.FeatureSubIssues})
	if !c.featureKnownUnavailable(apperrors.FeatureSubIssues) {
		t.Fatal("expected the feature to be cached as unavailable")
	}

	c.recordFeatureProbe(apperrors.FeatureIssueTypes, nil)
	if c.featureKnownUnavailable(apperrors.FeatureIssueTypes) {
		t.Fatal("a successful probe must not be cached as unavailable")
	}
}
