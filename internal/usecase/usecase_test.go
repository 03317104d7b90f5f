package usecase

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

// fakeRepo is an in-memory Repository mirroring the store's contracts:
// the partial uniqueness of pending notifications per (loan, kind) and the
// compare-and-set semantics of MarkNotificationDelivered.
type fakeRepo struct {
	mu            sync.Mutex
	books         map[uuid.UUID]Book
	students      map[uuid.UUID]Student
	loans         map[uuid.UUID]Loan
	contacts      []Contact
	notifications map[uuid.UUID]Notification

	seq       int
	createdAt time.Time

	// forceReturned makes IsLoanReturned report a return that a stale
	// ListLoans snapshot has not seen yet.
	forceReturned map[uuid.UUID]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		books:         make(map[uuid.UUID]Book),
		students:      make(map[uuid.UUID]Student),
		loans:         make(map[uuid.UUID]Loan),
		notifications: make(map[uuid.UUID]Notification),
		createdAt:     time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC),
		forceReturned: make(map[uuid.UUID]bool),
	}
}

func (r *fakeRepo) Health() map[string]string { return map[string]string{"status": "up"} }
func (r *fakeRepo) Close() error              { return nil }

func (r *fakeRepo) GetBookByID(_ context.Context, id uuid.UUID) (Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return Book{}, ErrNotFound{ID: id, Code: "BOOK_NOT_FOUND", Message: "book not found"}
	}
	return b, nil
}

func (r *fakeRepo) GetStudentByID(_ context.Context, id uuid.UUID) (Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.students[id]
	if !ok {
		return Student{}, ErrNotFound{ID: id, Code: "STUDENT_NOT_FOUND", Message: "student not found"}
	}
	return s, nil
}

func (r *fakeRepo) ListLoans(_ context.Context, opt ListLoansOption) ([]Loan, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var loans []Loan
	for _, l := range r.loans {
		if opt.IsActive && l.ReturnedAt != nil {
			continue
		}
		if opt.DueFrom != nil && l.DueAt.Before(*opt.DueFrom) {
			continue
		}
		if opt.DueBefore != nil && !l.DueAt.Before(*opt.DueBefore) {
			continue
		}
		if len(opt.BookIDs) > 0 && !containsID(opt.BookIDs, l.BookID) {
			continue
		}
		if len(opt.StudentIDs) > 0 && !containsID(opt.StudentIDs, l.StudentID) {
			continue
		}
		loans = append(loans, r.preloadLoan(l))
	}
	sort.Slice(loans, func(i, j int) bool { return loans[i].DueAt.Before(loans[j].DueAt) })
	return loans, len(loans), nil
}

func (r *fakeRepo) GetLoanByID(_ context.Context, id uuid.UUID) (Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.loans[id]
	if !ok {
		return Loan{}, ErrNotFound{ID: id, Code: "LOAN_NOT_FOUND", Message: "loan not found"}
	}
	return r.preloadLoan(l), nil
}

func (r *fakeRepo) CreateLoan(_ context.Context, l Loan) (Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l.ID = uuid.New()
	r.loans[l.ID] = l
	return l, nil
}

func (r *fakeRepo) ReturnLoan(_ context.Context, id uuid.UUID, returnedAt time.Time) (Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.loans[id]
	if !ok || l.ReturnedAt != nil {
		return Loan{}, ErrNotFound{ID: id, Code: "OPEN_LOAN_NOT_FOUND", Message: "open loan not found"}
	}
	l.ReturnedAt = &returnedAt
	r.loans[id] = l
	return r.preloadLoan(l), nil
}

func (r *fakeRepo) IsLoanReturned(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.forceReturned[id] {
		return true, nil
	}
	l, ok := r.loans[id]
	if !ok {
		return false, ErrNotFound{ID: id, Code: "LOAN_NOT_FOUND", Message: "loan not found"}
	}
	return l.ReturnedAt != nil, nil
}

func (r *fakeRepo) ListContacts(_ context.Context, opt ListContactsOption) ([]Contact, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var contacts []Contact
	for _, c := range r.contacts {
		if opt.ClassName != "" && c.ClassName != opt.ClassName {
			continue
		}
		if opt.Section != "" && c.Section != opt.Section {
			continue
		}
		if opt.ActiveOnly && !c.Active {
			continue
		}
		contacts = append(contacts, c)
	}
	return contacts, len(contacts), nil
}

func (r *fakeRepo) CreateContact(_ context.Context, c Contact) (Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = uuid.New()
	r.contacts = append(r.contacts, c)
	return c, nil
}

func (r *fakeRepo) FindActiveContacts(_ context.Context, className, section string) ([]Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var contacts []Contact
	for _, c := range r.contacts {
		if c.Active && c.ClassName == className && c.Section == section {
			contacts = append(contacts, c)
		}
	}
	return contacts, nil
}

func (r *fakeRepo) CreateNotification(_ context.Context, n Notification) (Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.notifications {
		if existing.LoanID == n.LoanID && existing.Kind == n.Kind && !existing.Delivered {
			return Notification{}, ErrDuplicateNotification
		}
	}
	n.ID = uuid.New()
	n.CreatedAt = r.createdAt.Add(time.Duration(r.seq) * time.Second)
	r.seq++
	r.notifications[n.ID] = n
	return n, nil
}

func (r *fakeRepo) ListNotifications(_ context.Context, opt ListNotificationsOption) ([]Notification, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var notifications []Notification
	for _, n := range r.notifications {
		switch opt.State {
		case NotificationStatePending:
			if n.Delivered {
				continue
			}
		case NotificationStateSent:
			if !n.Delivered {
				continue
			}
		}
		full := r.preloadNotification(n)
		if opt.ClassName != "" && (full.Contact == nil || full.Contact.ClassName != opt.ClassName) {
			continue
		}
		if opt.Section != "" && (full.Contact == nil || full.Contact.Section != opt.Section) {
			continue
		}
		notifications = append(notifications, full)
	}

	sort.Slice(notifications, func(i, j int) bool {
		if opt.OldestFirst {
			return notifications[i].CreatedAt.Before(notifications[j].CreatedAt)
		}
		return notifications[j].CreatedAt.Before(notifications[i].CreatedAt)
	})
	return notifications, len(notifications), nil
}

func (r *fakeRepo) GetNotificationByID(_ context.Context, id uuid.UUID) (Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok {
		return Notification{}, ErrNotFound{ID: id, Code: "NOTIFICATION_NOT_FOUND", Message: "notification not found"}
	}
	return r.preloadNotification(n), nil
}

func (r *fakeRepo) HasNotificationForLoan(_ context.Context, loanID uuid.UUID, kind NotificationKind) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.LoanID == loanID && n.Kind == kind {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) MarkNotificationDelivered(_ context.Context, id uuid.UUID, sentAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok || n.Delivered {
		return false, nil
	}
	n.Delivered = true
	n.SentAt = &sentAt
	r.notifications[id] = n
	return true, nil
}

func (r *fakeRepo) preloadLoan(l Loan) Loan {
	if b, ok := r.books[l.BookID]; ok {
		book := b
		l.Book = &book
	}
	if s, ok := r.students[l.StudentID]; ok {
		student := s
		l.Student = &student
	}
	return l
}

func (r *fakeRepo) preloadNotification(n Notification) Notification {
	if l, ok := r.loans[n.LoanID]; ok {
		loan := r.preloadLoan(l)
		n.Loan = &loan
	}
	for _, c := range r.contacts {
		if c.ID == n.ContactID {
			contact := c
			n.Contact = &contact
			break
		}
	}
	return n
}

func containsID(ids uuid.UUIDs, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []Email
	fail func(Email) error
}

func (m *fakeMailer) SendEmail(_ context.Context, e Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		if err := m.fail(e); err != nil {
			return err
		}
	}
	m.sent = append(m.sent, e)
	return nil
}

// testNow is the fixed "current time" of the test suite.
var testNow = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func newTestUsecase(t *testing.T) (Usecase, *fakeRepo, *fakeMailer) {
	t.Helper()
	repo := newFakeRepo()
	mailer := &fakeMailer{}
	u := New(repo, mailer, slog.New(slog.NewTextHandler(io.Discard, nil)))
	u.now = func() time.Time { return testNow }
	u.loanPeriod = 14
	u.reminderLead = 2
	return u, repo, mailer
}

func (r *fakeRepo) addBook(title string) Book {
	b := Book{ID: uuid.New(), Code: "BK-" + title, Title: title}
	r.books[b.ID] = b
	return b
}

func (r *fakeRepo) addStudent(name, className, section string, roll int) Student {
	s := Student{ID: uuid.New(), Name: name, ClassName: className, Section: section, RollNumber: roll, Active: true}
	r.students[s.ID] = s
	return s
}

func (r *fakeRepo) addContact(name, email, className, section string) Contact {
	c := Contact{ID: uuid.New(), Name: name, Email: email, ClassName: className, Section: section, Active: true}
	r.contacts = append(r.contacts, c)
	return c
}

func (r *fakeRepo) addLoan(book Book, student Student, dueAt time.Time) Loan {
	l := Loan{
		ID:        uuid.New(),
		BookID:    book.ID,
		StudentID: student.ID,
		IssuedAt:  dueAt.AddDate(0, 0, -14),
		DueAt:     dueAt,
	}
	r.loans[l.ID] = l
	return l
}
