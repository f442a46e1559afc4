package utils

import (
	"context"
	"fmt"
	"strings"
	"time"

	"playvault/models"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const purchaseSheetRange = "Purchases!A:F"

// SheetMirror appends a row per purchase request to a staff spreadsheet. The
// mirror is best-effort bookkeeping for the ops team, never part of the
// consistency boundary.
type SheetMirror struct {
	svc           *sheets.Service
	spreadsheetID string
}

func NewSheetMirror(ctx context.Context, credentialsFile, spreadsheetID string) (*SheetMirror, error) {
	svc, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	return &SheetMirror{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// AppendPurchaseRow writes one row for the request and returns the spreadsheet
// row number when the API reports it.
func (s *SheetMirror) AppendPurchaseRow(req *models.CreditPurchaseRequest, user *models.User) (int64, error) {
	vr := &sheets.ValueRange{
		Values: [][]interface{}{{
			req.ID,
			user.Email,
			req.CreditsRequested,
			req.USDAmount,
			string(req.Status),
			req.CreatedAt.Format(time.RFC3339),
		}},
	}

	resp, err := s.svc.Spreadsheets.Values.
		Append(s.spreadsheetID, purchaseSheetRange, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Do()
	if err != nil {
		return 0, err
	}
	if resp.Updates == nil {
		return 0, nil
	}
	return rowFromRange(resp.Updates.UpdatedRange), nil
}

// rowFromRange extracts the first row number from an A1-notation range like
// "Purchases!A42:F42". Returns 0 when the range cannot be parsed.
func rowFromRange(a1 string) int64 {
	if i := strings.IndexByte(a1, '!'); i >= 0 {
		a1 = a1[i+1:]
	}
	if i := strings.IndexByte(a1, ':'); i >= 0 {
		a1 = a1[:i]
	}

	var row int64
	for _, r := range a1 {
		if r >= '0' && r <= '9' {
			row = row*10 + int64(r-'0')
		}
	}
	return row
}
