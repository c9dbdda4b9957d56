package storage

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jonwraymond/invoicekit/gid"
	"github.com/jonwraymond/invoicekit/lookup"
)

func TestInvoiceRow_FormatsExternalIDs(t *testing.T) {
	b := lookup.NewBuilder(gid.MustNew(gid.DefaultNamespace), IntegerTypes...)
	customerID := uuid.MustParse("0190f0a4-7b4c-7d6e-8f00-112233445566")
	invoiceID := uuid.MustParse("a1b2c3d4-e5f6-7000-8000-000000000001")

	inv := Invoice{
		ID:         invoiceID,
		CustomerID: customerID,
		Number:     "INV-1",
		Status:     InvoiceOpen,
		CreatedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	row := b.FormatRow(inv.Row(), TypeInvoice, InvoiceForeignKeys)

	assert.Equal(t, b.Codec().Encode(TypeInvoice, invoiceID), row["id"])
	assert.Equal(t, b.Codec().Encode(TypeCustomer, customerID), row["customer_id"])
	assert.Nil(t, row["job_id"], "absent job passes through as nil")
	assert.Nil(t, row["paid_at"])
	assert.Equal(t, "INV-1", row["number"])
}

func TestInvoiceRow_JobAndPaidAt(t *testing.T) {
	jobID := uuid.New()
	paidAt := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	row := Invoice{JobID: uuid.NullUUID{UUID: jobID, Valid: true}, PaidAt: &paidAt}.Row()

	assert.Equal(t, jobID, row["job_id"])
	assert.Equal(t, paidAt, row["paid_at"])
}

func TestProductRow_IntegerID(t *testing.T) {
	b := lookup.NewBuilder(gid.MustNew(gid.DefaultNamespace), IntegerTypes...)

	row := b.FormatRow(Product{ID: 42, Name: "Valve", PriceCents: 1250}.Row(), TypeProduct, nil)

	assert.Equal(t, "gid://invoicekit/Product/0000000000042", row["id"])
	assert.Equal(t, int64(1250), row["price_cents"])
}

func TestJobRow_ForeignKey(t *testing.T) {
	b := lookup.NewBuilder(gid.MustNew(gid.DefaultNamespace), IntegerTypes...)
	job := Job{ID: uuid.New(), CustomerID: uuid.New(), Title: "Roof", Status: JobOpen}

	row := b.FormatRow(job.Row(), TypeJob, JobForeignKeys)

	assert.True(t, b.Codec().IsType(row["id"].(string), TypeJob))
	assert.True(t, b.Codec().IsType(row["customer_id"].(string), TypeCustomer))
}

func TestValidJobStatus(t *testing.T) {
	for _, s := range []string{JobOpen, JobActive, JobCompleted, JobCancelled} {
		assert.True(t, ValidJobStatus(s), s)
	}
	assert.False(t, ValidJobStatus("paused"))
	assert.False(t, ValidJobStatus(""))
}
