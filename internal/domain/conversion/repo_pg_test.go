package conversion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/qrda/converter/internal/domain/decode"
	"github.com/qrda/converter/internal/domain/node"
	"github.com/qrda/converter/internal/domain/templateid"
)

var convColumns = []string{"id", "source_name", "root_type", "tree", "diagnostics", "failure_count", "templates", "created_at"}

const storedTree = `{"type":"CLINICAL_DOCUMENT","path":"/ClinicalDocument","values":{"programName":"mips"},` +
	`"children":[{"type":"IA_SECTION","values":{"category":"ia"}}]}`

const storedDiagnostics = `[{"code":"unresolved_template","template":"UNMATCHED","root":"1.2.3","path":"/ClinicalDocument","message":"template root is not recognized"}]`

func TestConversionRepoPG_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO qrda_conversion`).
		WithArgs(pgxmock.AnyArg(), "report.xml", "CLINICAL_DOCUMENT", pgxmock.AnyArg(), pgxmock.AnyArg(), 0, []string{"CLINICAL_DOCUMENT"}).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(created))

	tree := node.New(templateid.ClinicalDocument)
	c := &Conversion{SourceName: "report.xml", RootType: "CLINICAL_DOCUMENT", Tree: tree, Templates: []string{"CLINICAL_DOCUMENT"}}

	if err := NewConversionRepoPG(mock).Create(context.Background(), c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ID == uuid.Nil {
		t.Error("expected id to be assigned")
	}
	if !c.CreatedAt.Equal(created) {
		t.Errorf("expected created_at %v, got %v", created, c.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConversionRepoPG_GetByID(t *testing.T) {
	id := uuid.New()
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		setupMock func(pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT .+ FROM qrda_conversion WHERE id = \$1`).
					WithArgs(id).
					WillReturnRows(pgxmock.NewRows(convColumns).AddRow(
						id, "report.xml", "CLINICAL_DOCUMENT", []byte(storedTree), []byte(storedDiagnostics),
						0, []string{"CLINICAL_DOCUMENT", "IA_SECTION"}, created))
			},
		},
		{
			name: "not found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT .+ FROM qrda_conversion WHERE id = \$1`).
					WithArgs(id).
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			if err != nil {
				t.Fatalf("failed to create pgx mock: %v", err)
			}
			defer mock.Close()
			tc.setupMock(mock)

			c, err := NewConversionRepoPG(mock).GetByID(context.Background(), id)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected error %v, got %v", tc.wantErr, err)
			}
			if tc.wantErr == nil {
				if c.Tree.Type != templateid.ClinicalDocument {
					t.Errorf("expected CLINICAL_DOCUMENT tree, got %s", c.Tree.Type)
				}
				if c.Tree.ValueOrEmpty("programName") != "mips" {
					t.Errorf("expected programName mips, got %q", c.Tree.ValueOrEmpty("programName"))
				}
				if c.Tree.FindFirstNode(templateid.IASection) == nil {
					t.Error("expected IA_SECTION child to be restored")
				}
				if len(c.Diagnostics) != 1 || c.Diagnostics[0].Code != decode.CodeUnresolvedTemplate {
					t.Errorf("expected one unresolved diagnostic, got %+v", c.Diagnostics)
				}
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestConversionRepoPG_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM qrda_conversion WHERE \$1 = ANY\(templates\)`).
		WithArgs("IA_SECTION").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT .+ FROM qrda_conversion WHERE \$1 = ANY\(templates\) ORDER BY created_at DESC`).
		WithArgs("IA_SECTION", 2, 0).
		WillReturnRows(pgxmock.NewRows(convColumns).
			AddRow(uuid.New(), "a.xml", "CLINICAL_DOCUMENT", []byte(storedTree), []byte("[]"), 0, []string{"IA_SECTION"}, created).
			AddRow(uuid.New(), "b.xml", "CLINICAL_DOCUMENT", []byte(storedTree), []byte("[]"), 1, []string{"IA_SECTION"}, created))

	items, total, err := NewConversionRepoPG(mock).ListByTemplate(context.Background(), "IA_SECTION", 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 {
		t.Errorf("expected total 3, got %d", total)
	}
	if len(items) != 2 || items[1].SourceName != "b.xml" || items[1].FailureCount != 1 {
		t.Errorf("unexpected items: %+v", items)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
