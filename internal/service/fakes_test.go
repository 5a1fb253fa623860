package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"autofilter-be/internal/entity"
	"autofilter-be/internal/repository/contract"
	"autofilter-be/internal/repository/specification"
	"autofilter-be/internal/repository/unitofwork"
	"autofilter-be/internal/transport"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}

func (nopLogger) Sync() error { return nil }

type sentMessage struct {
	ChatID  int64
	Text    string
	Buttons [][]transport.Button
}

type editedMessage struct {
	ChatID    int64
	MessageID int64
	Text      string
	Buttons   [][]transport.Button
}

type sentFile struct {
	ChatID  int64
	FileRef string
}

type fakeTransport struct {
	mu       sync.Mutex
	nextID   int64
	Sent     []sentMessage
	Edits    []editedMessage
	Deleted  []int64
	Files    []sentFile
	Answers  []string
	FailSend bool
	FailFile bool
}

func (t *fakeTransport) SendMessage(ctx context.Context, chatID int64, text string, buttons [][]transport.Button) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.FailSend {
		return 0, errors.New("send failed")
	}
	t.nextID++
	t.Sent = append(t.Sent, sentMessage{ChatID: chatID, Text: text, Buttons: buttons})
	return t.nextID, nil
}

func (t *fakeTransport) EditMessage(ctx context.Context, chatID, messageID int64, text string, buttons [][]transport.Button) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Edits = append(t.Edits, editedMessage{ChatID: chatID, MessageID: messageID, Text: text, Buttons: buttons})
	return nil
}

func (t *fakeTransport) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Deleted = append(t.Deleted, messageID)
	return nil
}

func (t *fakeTransport) SendFile(ctx context.Context, chatID int64, fileRef, caption string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.FailFile {
		return errors.New("delivery failed")
	}
	t.Files = append(t.Files, sentFile{ChatID: chatID, FileRef: fileRef})
	return nil
}

func (t *fakeTransport) AnswerCallback(ctx context.Context, callbackID, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Answers = append(t.Answers, text)
	return nil
}

func (t *fakeTransport) lastAnswer() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.Answers) == 0 {
		return ""
	}
	return t.Answers[len(t.Answers)-1]
}

// fakeFileRepo ignores query specifications; tests stage Total and Page
// explicitly to simulate the catalog's answer for the current state.
type fakeFileRepo struct {
	mu       sync.Mutex
	Records  []*entity.FileRecord
	Total    int64
	Page     []*entity.FileRecord
	Distinct map[string][]string
}

func (r *fakeFileRepo) Create(ctx context.Context, file *entity.FileRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.Records {
		if existing.FileRef == file.FileRef {
			return contract.ErrDuplicateFileRef
		}
	}
	stored := *file
	r.Records = append(r.Records, &stored)
	return nil
}

func (r *fakeFileRepo) FindByFileRef(ctx context.Context, fileRef string) (*entity.FileRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.Records {
		if f.FileRef == fileRef {
			return f, nil
		}
	}
	return nil, nil
}

func (r *fakeFileRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.FileRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Page != nil {
		return r.Page, nil
	}
	return r.Records, nil
}

func (r *fakeFileRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Total != 0 {
		return r.Total, nil
	}
	return int64(len(r.Records)), nil
}

func (r *fakeFileRepo) DistinctValues(ctx context.Context, facetColumn string, specs ...specification.Specification) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Distinct[facetColumn], nil
}

func (r *fakeFileRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Records)
}

type fakeUserRepo struct {
	mu       sync.Mutex
	Balances map[int64]int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{Balances: make(map[int64]int)}
}

func (r *fakeUserRepo) EnsureExists(ctx context.Context, user *entity.UserAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Balances[user.UserId]; !ok {
		r.Balances[user.UserId] = 0
	}
	return nil
}

func (r *fakeUserRepo) FindByUserId(ctx context.Context, userID int64) (*entity.UserAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	balance, ok := r.Balances[userID]
	if !ok {
		return nil, nil
	}
	return &entity.UserAccount{UserId: userID, Tokens: balance}, nil
}

func (r *fakeUserRepo) Debit(ctx context.Context, userID int64, amount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Balances[userID] < amount {
		return contract.ErrInsufficientTokens
	}
	r.Balances[userID] -= amount
	return nil
}

func (r *fakeUserRepo) Credit(ctx context.Context, userID int64, amount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Balances[userID] += amount
	return nil
}

func (r *fakeUserRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.Balances)), nil
}

func (r *fakeUserRepo) AllUserIds(ctx context.Context) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int64, 0, len(r.Balances))
	for id := range r.Balances {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *fakeUserRepo) balance(userID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Balances[userID]
}

type fakeVerificationRepo struct {
	mu     sync.Mutex
	Tokens map[string]entity.VerificationToken
}

func newFakeVerificationRepo() *fakeVerificationRepo {
	return &fakeVerificationRepo{Tokens: make(map[string]entity.VerificationToken)}
}

func (r *fakeVerificationRepo) Save(ctx context.Context, token *entity.VerificationToken, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Tokens[token.Token] = *token
	return nil
}

func (r *fakeVerificationRepo) Take(ctx context.Context, token string) (*entity.VerificationToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vt, ok := r.Tokens[token]
	if !ok {
		return nil, nil
	}
	delete(r.Tokens, token)
	if time.Now().After(vt.ExpiresAt) {
		return nil, nil
	}
	return &vt, nil
}

type fakeUnitOfWork struct {
	files *fakeFileRepo
	users *fakeUserRepo
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }

func (u *fakeUnitOfWork) FileRepository() contract.FileRepository { return u.files }
func (u *fakeUnitOfWork) UserRepository() contract.UserRepository { return u.users }

type fakeUowFactory struct {
	uow *fakeUnitOfWork
}

func newFakeUowFactory(files *fakeFileRepo, users *fakeUserRepo) *fakeUowFactory {
	return &fakeUowFactory{uow: &fakeUnitOfWork{files: files, users: users}}
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}
