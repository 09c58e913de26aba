package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/sourceplane/flowgate/internal/model"
	"github.com/sourceplane/flowgate/internal/normalize"
	"github.com/sourceplane/flowgate/internal/schema"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Store loads, validates and holds workflow definitions. Loading is
// idempotent and side-effect-free: the same path always yields the same
// workflow, cached after the first read.
type Store struct {
	baseDir   string
	validator *schema.Validator
	log       *logrus.Entry

	mu    sync.RWMutex
	cache map[string]*model.Workflow
}

// NewStore creates a store rooted at baseDir. Workflow references are
// resolved relative to it.
func NewStore(baseDir string, log *logrus.Entry) (*Store, error) {
	validator, err := schema.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to build workflow validator: %w", err)
	}
	return &Store{
		baseDir:   baseDir,
		validator: validator,
		log:       log,
		cache:     make(map[string]*model.Workflow),
	}, nil
}

// Load reads, validates and normalizes the workflow at path. Missing
// files yield a NotFoundError, malformed content a ParseError.
func (s *Store) Load(path string) (*model.Workflow, error) {
	key := filepath.Clean(path)

	s.mu.RLock()
	if wf, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return wf, nil
	}
	s.mu.RUnlock()

	full := key
	if !filepath.IsAbs(full) {
		full = filepath.Join(s.baseDir, key)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &model.NotFoundError{Ref: path}
		}
		return nil, fmt.Errorf("failed to read workflow file %s: %w", path, err)
	}

	wf, err := s.parse(key, data)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[key] = wf
	s.mu.Unlock()

	s.log.WithField("workflow", wf.Name).Debugf("loaded %s", key)
	return wf, nil
}

func (s *Store) parse(key string, data []byte) (*model.Workflow, error) {
	// Decode generically first so the schema sees the raw document shape.
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &model.ParseError{Path: key, Err: err}
	}
	if err := s.validator.ValidateWorkflow(doc); err != nil {
		return nil, &model.ParseError{Path: key, Err: err}
	}

	var wf model.Workflow
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, &model.ParseError{Path: key, Err: err}
	}
	wf.Path = key

	if err := normalize.Workflow(&wf); err != nil {
		return nil, &model.ParseError{Path: key, Err: err}
	}

	return &wf, nil
}

// Lookup returns an already-loaded workflow by path. Deterministic:
// unresolved lookups fail with NotFoundError.
func (s *Store) Lookup(path string) (*model.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if wf, ok := s.cache[filepath.Clean(path)]; ok {
		return wf, nil
	}
	return nil, &model.NotFoundError{Ref: path}
}

// Resolve maps a uses reference to a workflow. Local paths are always
// supported; remote repository references ("owner/repo/file@ref") are an
// extension point and currently unresolved.
func (s *Store) Resolve(ref string) (*model.Workflow, error) {
	if strings.Contains(ref, "@") {
		return nil, &model.NotFoundError{Ref: ref}
	}
	return s.Load(ref)
}

// LoadDir loads every .yaml/.yml workflow under dir concurrently and
// returns them sorted by path.
func (s *Store) LoadDir(dir string) ([]*model.Workflow, error) {
	root := dir
	if !filepath.IsAbs(root) {
		root = filepath.Join(s.baseDir, dir)
	}

	var paths []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		switch filepath.Ext(info.Name()) {
		case ".yaml", ".yml":
		default:
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.Join(dir, rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk workflow directory %s: %w", dir, err)
	}

	workflows := make([]*model.Workflow, len(paths))
	var g errgroup.Group
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			wf, err := s.Load(p)
			if err != nil {
				return err
			}
			workflows[i] = wf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(workflows, func(i, j int) bool { return workflows[i].Path < workflows[j].Path })
	return workflows, nil
}
