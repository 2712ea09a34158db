package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"ai-casefile-be/internal/entity"
	"ai-casefile-be/internal/repository/contract"
	"ai-casefile-be/internal/repository/specification"
	"ai-casefile-be/internal/repository/unitofwork"
	"ai-casefile-be/pkg/llm"
	"ai-casefile-be/pkg/uploader"

	"github.com/google/uuid"
)

// In-memory doubles for the repository contracts and the generative
// providers. They interpret only the specifications the services actually
// use (ById, ByCaseID, NewOnly ordering is ignored).

func byID(id uuid.UUID) specification.ByID {
	return specification.ByID{ID: id}
}

type fakeCaseRepo struct {
	mu        sync.Mutex
	cases     map[uuid.UUID]*entity.Case
	createErr error
}

func newFakeCaseRepo() *fakeCaseRepo {
	return &fakeCaseRepo{cases: make(map[uuid.UUID]*entity.Case)}
}

func (r *fakeCaseRepo) Create(ctx context.Context, c *entity.Case) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.cases[c.Id] = cloneCase(c)
	return nil
}

func (r *fakeCaseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cases, id)
	return nil
}

func (r *fakeCaseRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sp := range specs {
		if byId, ok := sp.(specification.ByID); ok {
			if c, found := r.cases[byId.ID]; found {
				return cloneCase(c), nil
			}
			return nil, nil
		}
	}
	return nil, nil
}

func (r *fakeCaseRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var owner *uuid.UUID
	for _, sp := range specs {
		if ownedBy, ok := sp.(specification.OwnedBy); ok {
			id := ownedBy.OwnerID
			owner = &id
		}
	}
	var out []*entity.Case
	for _, c := range r.cases {
		if owner == nil || c.OwnerId == *owner {
			out = append(out, cloneCase(c))
		}
	}
	return out, nil
}

func (r *fakeCaseRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.cases)), nil
}

func (r *fakeCaseRepo) UpdateProgress(ctx context.Context, id uuid.UUID, progress *entity.InvestigationProgress, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, found := r.cases[id]
	if !found {
		return errors.New("case not found")
	}
	if c.ProgressVersion != expectedVersion {
		return contract.ErrProgressConflict
	}
	c.Progress = cloneProgress(*progress)
	c.ProgressVersion++
	return nil
}

func cloneCase(c *entity.Case) *entity.Case {
	cp := *c
	cp.Progress = cloneProgress(c.Progress)
	return &cp
}

func cloneProgress(p entity.InvestigationProgress) entity.InvestigationProgress {
	raw, _ := json.Marshal(p)
	var out entity.InvestigationProgress
	_ = json.Unmarshal(raw, &out)
	if out.VisitedLocations == nil {
		out.VisitedLocations = make(map[string]entity.VisitRecord)
	}
	if out.InterrogatedSuspects == nil {
		out.InterrogatedSuspects = make(map[string]entity.InterrogationRecord)
	}
	return out
}

type fakeFindingRepo struct {
	mu       sync.Mutex
	findings []*entity.Finding
}

func (r *fakeFindingRepo) Create(ctx context.Context, f *entity.Finding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *f
	r.findings = append(r.findings, &cp)
	return nil
}

func (r *fakeFindingRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Finding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Finding, 0, len(r.findings))
	for _, f := range r.findings {
		if matchesFinding(f, specs) {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeFindingRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func (r *fakeFindingRepo) MarkViewedByCaseId(ctx context.Context, caseId uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.findings {
		if f.CaseId == caseId {
			f.IsNew = false
		}
	}
	return nil
}

func matchesFinding(f *entity.Finding, specs []specification.Specification) bool {
	for _, sp := range specs {
		switch s := sp.(type) {
		case specification.ByCaseID:
			if f.CaseId != s.CaseID {
				return false
			}
		case specification.NewOnly:
			if !f.IsNew {
				return false
			}
		}
	}
	return true
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.Id] = &cp
	return nil
}

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sp := range specs {
		switch s := sp.(type) {
		case specification.ByID:
			if u, ok := r.users[s.ID]; ok {
				cp := *u
				return &cp, nil
			}
			return nil, nil
		case specification.ByEmail:
			for _, u := range r.users {
				if u.Email == s.Email {
					cp := *u
					return &cp, nil
				}
			}
			return nil, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

type fakeUow struct {
	caseRepo    *fakeCaseRepo
	findingRepo *fakeFindingRepo
	userRepo    *fakeUserRepo
}

func (u *fakeUow) Begin(ctx context.Context) error { return nil }
func (u *fakeUow) Commit() error                   { return nil }
func (u *fakeUow) Rollback() error                 { return nil }

func (u *fakeUow) UserRepository() contract.UserRepository       { return u.userRepo }
func (u *fakeUow) CaseRepository() contract.CaseRepository       { return u.caseRepo }
func (u *fakeUow) FindingRepository() contract.FindingRepository { return u.findingRepo }

type fakeUowFactory struct {
	uow *fakeUow
}

func newFakeUowFactory() *fakeUowFactory {
	return &fakeUowFactory{
		uow: &fakeUow{
			caseRepo:    newFakeCaseRepo(),
			findingRepo: &fakeFindingRepo{},
			userRepo:    newFakeUserRepo(),
		},
	}
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

// fakeLLM dispatches on the prompt so the pipeline's distinct stages can be
// scripted independently.
type fakeLLM struct {
	generate func(prompt string) (string, error)
	chat     func(history []llm.Message) (string, error)
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.generate(prompt)
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	if f.chat != nil {
		return f.chat(history)
	}
	return "no comment", nil
}

type fakeImageProvider struct {
	generate func(prompt string) ([]byte, error)
}

func (f *fakeImageProvider) Generate(ctx context.Context, prompt string) ([]byte, error) {
	if f.generate != nil {
		return f.generate(prompt)
	}
	return []byte{0x89, 0x50, 0x4e, 0x47}, nil
}

type fakeUploader struct {
	mu        sync.Mutex
	uploads   []string
	removed   []string
	uploadErr error
}

func (f *fakeUploader) Upload(ctx context.Context, data []byte, name, folder string) (*uploader.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	id := folder + "/" + name
	f.uploads = append(f.uploads, id)
	return &uploader.Result{URL: "http://cdn.local/" + id, ID: id}, nil
}

func (f *fakeUploader) Remove(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, id)
	return nil
}

type fakeMailer struct{}

func (fakeMailer) SendCaseReady(toEmail, caseTitle, caseId string) error { return nil }
func (fakeMailer) SendCaseFailed(toEmail, reason string) error           { return nil }
