package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/fotogo/gallery-core/internal/config"
	"github.com/fotogo/gallery-core/internal/cropper"
	"github.com/fotogo/gallery-core/internal/detect"
	"github.com/fotogo/gallery-core/internal/facesearch"
	"github.com/fotogo/gallery-core/internal/gallery"
	"github.com/fotogo/gallery-core/internal/preset"
	"github.com/fotogo/gallery-core/internal/quality"
)

// services holds everything the commands operate on, wired from config.
type services struct {
	cfg         *config.Config
	locator     *detect.Locator
	crops       *cropper.Engine
	scorer      *quality.Scorer
	gallery     *gallery.Service
	presets     *preset.Store
	extractor   *facesearch.Extractor
	watermarker *gallery.Watermarker
	blobs       gallery.BlobStore
	vectors     facesearch.VectorStore
	closers     []func() error
}

// buildServices wires the processing core from configuration. Optional
// capabilities (pose sidecar, face cascade, database) degrade to their
// fallbacks when unconfigured.
func buildServices(cfg *config.Config) (*services, error) {
	var faces detect.FaceFinder
	if pf, err := detect.NewPigoFinderFromFile(cfg.Detect.FaceCascadePath); err != nil {
		return nil, fmt.Errorf("loading face cascade: %w", err)
	} else if pf != nil {
		faces = pf
	}
	var pose detect.PoseEstimator
	if c := detect.NewPoseClient(cfg.Detect.PoseServiceURL); c != nil {
		pose = c
	}

	locator := detect.NewLocator(pose, faces)
	crops := cropper.New(locator)
	scorer := quality.NewScorer(locator)

	blobs := gallery.NewFSStore(cfg.Media.Dir)
	index := gallery.NewFileIndex(cfg.Media.Dir)
	galleryService := gallery.NewService(blobs, index, scorer, crops,
		cfg.Workers, cfg.Defaults.DiscardThreshold, cfg.Defaults.JPEGQuality)

	presets := preset.NewStore(filepath.Join(cfg.Media.Dir, "presets.json"))
	watermarker := gallery.NewWatermarker(blobs, index, cfg.Media.WatermarkPath, cfg.Defaults.WatermarkOpacity)

	s := &services{
		cfg:         cfg,
		locator:     locator,
		crops:       crops,
		scorer:      scorer,
		gallery:     galleryService,
		presets:     presets,
		extractor:   facesearch.NewExtractor(faces),
		watermarker: watermarker,
		blobs:       blobs,
	}

	if cfg.Database.URL != "" {
		store, err := facesearch.NewPostgresVectorStore(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connecting face-vector database: %w", err)
		}
		s.vectors = store
		s.closers = append(s.closers, store.Close)
	} else {
		s.vectors = facesearch.NewMemVectorStore()
	}

	return s, nil
}

func (s *services) searcher() *facesearch.Searcher {
	return facesearch.NewSearcher(s.gallery, s.blobs, s.extractor, s.vectors, s.cfg.Workers)
}

func (s *services) close() {
	for _, c := range s.closers {
		_ = c()
	}
}
