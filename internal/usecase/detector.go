package usecase

import (
	"context"
	"errors"
	"log/slog"
)

// DetectOverdue scans the ledger for loans past due and not yet returned
// and queues one OVERDUE notification per loan. It returns the number of
// notifications queued. Running the sweep twice in a row queues nothing on
// the second pass.
func (u Usecase) DetectOverdue(ctx context.Context) (int, error) {
	today := startOfDay(u.now())

	loans, _, err := u.repo.ListLoans(ctx, ListLoansOption{
		IsActive:  true,
		DueBefore: &today,
	})
	if err != nil {
		return 0, err
	}

	var queued int
	for _, loan := range loans {
		ok, err := u.queueNotification(ctx, loan, KindOverdue)
		if err != nil {
			return queued, err
		}
		if ok {
			queued++
		}
	}
	return queued, nil
}

// DetectDueSoon queues REMINDER notifications for open loans whose due date
// falls within the configured lead window, starting today.
func (u Usecase) DetectDueSoon(ctx context.Context) (int, error) {
	today := startOfDay(u.now())
	horizon := today.AddDate(0, 0, u.reminderLead)

	loans, _, err := u.repo.ListLoans(ctx, ListLoansOption{
		IsActive:  true,
		DueFrom:   &today,
		DueBefore: &horizon,
	})
	if err != nil {
		return 0, err
	}

	var queued int
	for _, loan := range loans {
		ok, err := u.queueNotification(ctx, loan, KindReminder)
		if err != nil {
			return queued, err
		}
		if ok {
			queued++
		}
	}
	return queued, nil
}

// queueNotification inserts one notification for the loan unless one of the
// same kind already exists, no contact resolves, or the loan has been
// returned since the scan selected it. Skips are warnings, not failures, so
// one bad loan never aborts the sweep.
func (u Usecase) queueNotification(ctx context.Context, loan Loan, kind NotificationKind) (bool, error) {
	exists, err := u.repo.HasNotificationForLoan(ctx, loan.ID, kind)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	if loan.Student == nil || loan.Book == nil {
		u.logger.Warn("loan missing student or book, skipping",
			slog.String("loan_id", loan.ID.String()))
		return false, nil
	}

	contact, err := u.ResolveContact(ctx, loan.Student.ClassName, loan.Student.Section)
	if err != nil {
		return false, err
	}
	if contact == nil {
		u.logger.Warn("no contact for loan, skipping",
			slog.String("loan_id", loan.ID.String()),
			slog.String("class", loan.Student.ClassName),
			slog.String("section", loan.Student.Section),
		)
		return false, nil
	}

	// The loan may have been returned between the scan and this point.
	returned, err := u.repo.IsLoanReturned(ctx, loan.ID)
	if err != nil {
		return false, err
	}
	if returned {
		return false, nil
	}

	msg, err := u.renderNotificationMessage(loan, kind)
	if err != nil {
		return false, err
	}

	_, err = u.repo.CreateNotification(ctx, Notification{
		LoanID:    loan.ID,
		ContactID: contact.ID,
		Kind:      kind,
		Message:   msg,
	})
	if errors.Is(err, ErrDuplicateNotification) {
		// lost the race against a concurrent sweep
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
