package model

import (
	"fmt"
	"sync"

	"github.com/antonvlasov/documind/internal/core/ports"
	"github.com/antonvlasov/documind/internal/infrastructure/model/tfidf"
	"github.com/antonvlasov/documind/internal/infrastructure/model/xgboost"
)

// Registry loads the vectorizer, classifier and label decoder exactly once.
// The outcome is sticky for the process lifetime: a failed load is reported
// on every call until the artifacts are fixed and the process restarts.
type Registry struct {
	manifestPath string

	once       sync.Once
	vectorizer *tfidf.Vectorizer
	classifier *xgboost.Classifier
	err        error
}

func NewRegistry(manifestPath string) *Registry {
	return &Registry{manifestPath: manifestPath}
}

func (r *Registry) Models() (ports.FeatureVectorizer, ports.CategoryClassifier, error) {
	r.once.Do(r.load)
	if r.err != nil {
		return nil, nil, r.err
	}
	return r.vectorizer, r.classifier, nil
}

func (r *Registry) load() {
	manifest, err := LoadManifest(r.manifestPath)
	if err != nil {
		r.err = err
		return
	}

	vectorizer, err := tfidf.Load(manifest.VectorizerPath)
	if err != nil {
		r.err = err
		return
	}

	classifier, err := xgboost.Load(manifest.ClassifierPath, manifest.LabelsPath)
	if err != nil {
		r.err = err
		return
	}

	// Artifacts trained together must agree on dimensionality; skew here
	// would misclassify every document.
	if classifier.Features() != vectorizer.Dimensions() {
		r.err = fmt.Errorf(
			"vectorizer emits %d features but classifier expects %d: artifacts out of sync",
			vectorizer.Dimensions(), classifier.Features(),
		)
		return
	}

	r.vectorizer = vectorizer
	r.classifier = classifier
}
