// Package batches persists receipts of processed batches.
package batches

import (
	"fmt"
	"time"

	"github.com/spacemeshos/go-entrypoint/common/types"
	"github.com/spacemeshos/go-entrypoint/sql"
)

// Batch is the header of a processed batch.
type Batch struct {
	ID          int64
	Beneficiary types.Address
	Collected   uint64
	Root        types.Hash32
	Timestamp   time.Time
}

// Receipt is the outcome of a single operation in a batch.
type Receipt struct {
	Index  int
	OpHash types.Hash32
	Sender types.Address
	Status uint8
	Reason string
	Fee    uint64
	Used   uint64
}

// Add stores the batch header with its receipts and returns the assigned id.
func Add(db sql.Executor, batch *Batch, receipts []Receipt) (int64, error) {
	var id int64
	if _, err := db.Exec(`insert into batches (beneficiary, collected, root, timestamp)
		values (?1, ?2, ?3, ?4) returning id;`,
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, batch.Beneficiary.Bytes())
			stmt.BindInt64(2, int64(batch.Collected))
			stmt.BindBytes(3, batch.Root.Bytes())
			stmt.BindInt64(4, batch.Timestamp.UnixNano())
		}, func(stmt *sql.Statement) bool {
			id = stmt.ColumnInt64(0)
			return true
		}); err != nil {
		return 0, fmt.Errorf("insert batch: %w", err)
	}
	for _, r := range receipts {
		if _, err := db.Exec(`insert into outcomes (batch, idx, op_hash, sender, status, reason, fee, used)
			values (?1, ?2, ?3, ?4, ?5, ?6, ?7, ?8);`,
			func(stmt *sql.Statement) {
				stmt.BindInt64(1, id)
				stmt.BindInt64(2, int64(r.Index))
				stmt.BindBytes(3, r.OpHash.Bytes())
				stmt.BindBytes(4, r.Sender.Bytes())
				stmt.BindInt64(5, int64(r.Status))
				if r.Reason != "" {
					stmt.BindText(6, r.Reason)
				} else {
					stmt.BindNull(6)
				}
				stmt.BindInt64(7, int64(r.Fee))
				stmt.BindInt64(8, int64(r.Used))
			}, nil); err != nil {
			return 0, fmt.Errorf("insert receipt %d of batch %d: %w", r.Index, id, err)
		}
	}
	batch.ID = id
	return id, nil
}

// Get the batch header by id.
func Get(db sql.Executor, id int64) (*Batch, error) {
	var batch *Batch
	if _, err := db.Exec("select beneficiary, collected, root, timestamp from batches where id = ?1;",
		func(stmt *sql.Statement) {
			stmt.BindInt64(1, id)
		}, func(stmt *sql.Statement) bool {
			batch = &Batch{ID: id}
			stmt.ColumnBytes(0, batch.Beneficiary[:])
			batch.Collected = uint64(stmt.ColumnInt64(1))
			stmt.ColumnBytes(2, batch.Root[:])
			batch.Timestamp = time.Unix(0, stmt.ColumnInt64(3)).UTC()
			return false
		}); err != nil {
		return nil, fmt.Errorf("get batch %d: %w", id, err)
	}
	if batch == nil {
		return nil, fmt.Errorf("%w: batch %d", sql.ErrNotFound, id)
	}
	return batch, nil
}

func decodeReceipt(stmt *sql.Statement) Receipt {
	var r Receipt
	r.Index = int(stmt.ColumnInt64(0))
	stmt.ColumnBytes(1, r.OpHash[:])
	stmt.ColumnBytes(2, r.Sender[:])
	r.Status = uint8(stmt.ColumnInt64(3))
	if !sql.IsNull(stmt, 4) {
		r.Reason = stmt.ColumnText(4)
	}
	r.Fee = uint64(stmt.ColumnInt64(5))
	r.Used = uint64(stmt.ColumnInt64(6))
	return r
}

// Receipts of the batch ordered by their position.
func Receipts(db sql.Executor, id int64) ([]Receipt, error) {
	var rst []Receipt
	if _, err := db.Exec(`select idx, op_hash, sender, status, reason, fee, used
		from outcomes where batch = ?1 order by idx;`,
		func(stmt *sql.Statement) {
			stmt.BindInt64(1, id)
		}, func(stmt *sql.Statement) bool {
			rst = append(rst, decodeReceipt(stmt))
			return true
		}); err != nil {
		return nil, fmt.Errorf("receipts of batch %d: %w", id, err)
	}
	return rst, nil
}

// ByHash returns the latest receipt of the operation and the batch it was included in.
func ByHash(db sql.Executor, opHash types.Hash32) (int64, *Receipt, error) {
	var (
		batch   int64
		receipt *Receipt
	)
	if _, err := db.Exec(`select idx, op_hash, sender, status, reason, fee, used, batch
		from outcomes where op_hash = ?1 order by batch desc limit 1;`,
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, opHash.Bytes())
		}, func(stmt *sql.Statement) bool {
			r := decodeReceipt(stmt)
			receipt = &r
			batch = stmt.ColumnInt64(7)
			return false
		}); err != nil {
		return 0, nil, fmt.Errorf("receipt %v: %w", opHash, err)
	}
	if receipt == nil {
		return 0, nil, fmt.Errorf("%w: receipt %v", sql.ErrNotFound, opHash)
	}
	return batch, receipt, nil
}
