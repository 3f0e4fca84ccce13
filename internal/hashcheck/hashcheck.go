// Package hashcheck validates hashed PII fields across the two loaded
// datasets: recomputed email digests, cross-dataset hash consistency, and
// hash algorithm fingerprinting.
package hashcheck

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/matchd/internal/stats"
	"github.com/fyrsmithlabs/matchd/internal/store"
)

// maxMismatchSamples caps how many mismatching rows are carried into the
// result for reporting.
const maxMismatchSamples = 5

// Mismatch is one email row whose stored hash disagrees with the recomputed
// digest on either side.
type Mismatch struct {
	Email       string
	Expected    string
	SourceHash  string
	TargetHash  string
	SourceValid bool
	TargetValid bool
}

// Validation summarizes hash integrity for one field.
type Validation struct {
	Field          string
	TotalRecords   int
	ValidHashes    int
	InvalidHashes  int
	ValidationRate float64
	Samples        []Mismatch
}

// Consistency counts whether the two datasets carry the same hash for rows
// joined on the standardized email.
type Consistency struct {
	TotalMatches    int
	HashMatches     int
	HashMismatches  int
	ConsistencyRate float64
}

// LengthBucket is one (table, hash length) group.
type LengthBucket struct {
	Table  string
	Length int
	Count  int
}

// PatternBucket classifies hashes by apparent algorithm.
type PatternBucket struct {
	Table   string
	Pattern string
	Count   int
}

// MobileSample records the detected format of one joined mobile pair.
type MobileSample struct {
	SourceMobile string
	TargetMobile string
	SourceFormat string
	TargetFormat string
}

// MobileFormat reports whether mobile values look like plain numbers or
// 64-char hex digests. Plain text is the expected format.
type MobileFormat struct {
	TotalSampled int
	PlainFormat  int
	HashFormat   int
	PlainRate    float64
	Samples      []MobileSample
}

// Result is a full hash integrity run.
type Result struct {
	Email           Validation
	Consistency     Consistency
	MobileHashCount int
	Mobile          *MobileFormat
	Lengths         []LengthBucket
	Patterns        []PatternBucket
	Elapsed         time.Duration
}

// Analyzer runs hash integrity checks against the analysis store.
type Analyzer struct {
	store  *store.Store
	logger *zap.Logger
}

func NewAnalyzer(s *store.Store, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{store: s, logger: logger}
}

// ExpectedEmailHash returns the canonical digest for an email address: the
// uppercase hex SHA-256 of the lowercased, trimmed address.
func ExpectedEmailHash(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// IsHexDigest reports whether s looks like a hex digest of the given length.
func IsHexDigest(s string, length int) bool {
	if len(s) != length {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// Run executes the full integrity analysis.
func (a *Analyzer) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	a.logger.Info("starting hash integrity analysis")

	result := &Result{}

	email, err := a.validateEmailHashes(ctx)
	if err != nil {
		return nil, fmt.Errorf("email hash validation: %w", err)
	}
	result.Email = *email

	consistency, err := a.hashConsistency(ctx)
	if err != nil {
		return nil, fmt.Errorf("hash consistency: %w", err)
	}
	result.Consistency = *consistency

	result.MobileHashCount, err = a.countMobileHashes(ctx)
	if err != nil {
		return nil, fmt.Errorf("mobile hash detection: %w", err)
	}
	if result.MobileHashCount > 0 {
		result.Mobile, err = a.analyzeMobileFormat(ctx)
		if err != nil {
			return nil, fmt.Errorf("mobile format analysis: %w", err)
		}
	}

	result.Lengths, err = a.hashLengths(ctx)
	if err != nil {
		return nil, fmt.Errorf("hash length distribution: %w", err)
	}
	result.Patterns, err = a.hashPatterns(ctx)
	if err != nil {
		return nil, fmt.Errorf("hash pattern analysis: %w", err)
	}

	result.Elapsed = time.Since(start)
	a.logger.Info("hash integrity analysis complete",
		zap.Int("email_records", result.Email.TotalRecords),
		zap.Float64("validation_rate", result.Email.ValidationRate),
		zap.Duration("elapsed", result.Elapsed))
	return result, nil
}

// validateEmailHashes joins the datasets on email_std and recomputes the
// digest for every shared address. A row is valid only when both stored
// hashes match the recomputed one.
func (a *Analyzer) validateEmailHashes(ctx context.Context) (*Validation, error) {
	query := fmt.Sprintf(`
		SELECT d.email_std, d.email_hash, a.email_hash
		FROM %s d
		INNER JOIN %s a ON d.email_std = a.email_std
		WHERE d.email_std IS NOT NULL AND a.email_std IS NOT NULL
		  AND d.email_hash IS NOT NULL AND a.email_hash IS NOT NULL`,
		store.SourceTable, store.TargetTable)

	rows, err := a.store.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	v := &Validation{Field: "email"}
	for rows.Next() {
		var email, srcHash, tgtHash string
		if err := rows.Scan(&email, &srcHash, &tgtHash); err != nil {
			return nil, err
		}
		expected := ExpectedEmailHash(email)
		srcValid := strings.ToUpper(srcHash) == expected
		tgtValid := strings.ToUpper(tgtHash) == expected
		if srcValid && tgtValid {
			v.ValidHashes++
			continue
		}
		v.InvalidHashes++
		if len(v.Samples) < maxMismatchSamples {
			v.Samples = append(v.Samples, Mismatch{
				Email:       email,
				Expected:    expected,
				SourceHash:  srcHash,
				TargetHash:  tgtHash,
				SourceValid: srcValid,
				TargetValid: tgtValid,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	v.TotalRecords = v.ValidHashes + v.InvalidHashes
	v.ValidationRate = stats.Rate(v.ValidHashes, v.TotalRecords)
	return v, nil
}

func (a *Analyzer) hashConsistency(ctx context.Context) (*Consistency, error) {
	query := fmt.Sprintf(`
		SELECT
			COUNT(*),
			COUNT(CASE WHEN d.email_hash = a.email_hash THEN 1 END),
			COUNT(CASE WHEN d.email_hash != a.email_hash THEN 1 END)
		FROM %s d
		INNER JOIN %s a ON d.email_std = a.email_std
		WHERE d.email_std IS NOT NULL AND a.email_std IS NOT NULL
		  AND d.email_hash IS NOT NULL AND a.email_hash IS NOT NULL`,
		store.SourceTable, store.TargetTable)

	c := &Consistency{}
	err := a.store.DB().QueryRowContext(ctx, query).
		Scan(&c.TotalMatches, &c.HashMatches, &c.HashMismatches)
	if err != nil {
		return nil, err
	}
	c.ConsistencyRate = stats.Rate(c.HashMatches, c.TotalMatches)
	return c, nil
}

func (a *Analyzer) countMobileHashes(ctx context.Context) (int, error) {
	query := fmt.Sprintf(
		`SELECT COUNT(*) FROM %s WHERE mobile IS NOT NULL AND LENGTH(mobile) = 64`,
		store.SourceTable)
	var n int
	err := a.store.DB().QueryRowContext(ctx, query).Scan(&n)
	return n, err
}

func (a *Analyzer) analyzeMobileFormat(ctx context.Context) (*MobileFormat, error) {
	query := fmt.Sprintf(`
		SELECT d.mobile, a.mobile
		FROM %s d
		INNER JOIN %s a ON d.mobile = a.mobile
		WHERE d.mobile IS NOT NULL AND a.mobile IS NOT NULL
		  AND LENGTH(d.mobile) > 10`,
		store.SourceTable, store.TargetTable)

	rows, err := a.store.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	m := &MobileFormat{}
	for rows.Next() {
		var src, tgt string
		if err := rows.Scan(&src, &tgt); err != nil {
			return nil, err
		}
		srcHash := IsHexDigest(src, 64)
		tgtHash := IsHexDigest(tgt, 64)
		if srcHash || tgtHash {
			m.HashFormat++
		} else {
			m.PlainFormat++
		}
		if len(m.Samples) < maxMismatchSamples {
			m.Samples = append(m.Samples, MobileSample{
				SourceMobile: src,
				TargetMobile: tgt,
				SourceFormat: formatLabel(srcHash),
				TargetFormat: formatLabel(tgtHash),
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	m.TotalSampled = m.PlainFormat + m.HashFormat
	m.PlainRate = stats.Rate(m.PlainFormat, m.TotalSampled)
	return m, nil
}

func formatLabel(isHash bool) string {
	if isHash {
		return "HASH"
	}
	return "PLAIN"
}

func (a *Analyzer) hashLengths(ctx context.Context) ([]LengthBucket, error) {
	var buckets []LengthBucket
	for _, table := range []string{store.SourceTable, store.TargetTable} {
		query := fmt.Sprintf(`
			SELECT LENGTH(email_hash), COUNT(*)
			FROM %s
			WHERE email_hash IS NOT NULL
			GROUP BY LENGTH(email_hash)
			ORDER BY LENGTH(email_hash)`, table)
		rows, err := a.store.DB().QueryContext(ctx, query)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			b := LengthBucket{Table: table}
			if err := rows.Scan(&b.Length, &b.Count); err != nil {
				rows.Close()
				return nil, err
			}
			buckets = append(buckets, b)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return buckets, nil
}

// hashPatterns classifies stored hashes by length and character set. GLOB is
// case sensitive, unlike LIKE, so the upper/lower split works.
func (a *Analyzer) hashPatterns(ctx context.Context) ([]PatternBucket, error) {
	var buckets []PatternBucket
	for _, table := range []string{store.SourceTable, store.TargetTable} {
		query := fmt.Sprintf(`
			SELECT
				CASE
					WHEN LENGTH(email_hash) = 64 AND email_hash NOT GLOB '*[^0-9A-F]*' THEN 'SHA256_UPPER'
					WHEN LENGTH(email_hash) = 64 AND email_hash NOT GLOB '*[^0-9a-f]*' THEN 'SHA256_LOWER'
					WHEN LENGTH(email_hash) = 32 THEN 'MD5'
					ELSE 'OTHER'
				END AS pattern,
				COUNT(*)
			FROM %s
			WHERE email_hash IS NOT NULL
			GROUP BY pattern
			ORDER BY pattern`, table)
		rows, err := a.store.DB().QueryContext(ctx, query)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			b := PatternBucket{Table: table}
			if err := rows.Scan(&b.Pattern, &b.Count); err != nil {
				rows.Close()
				return nil, err
			}
			buckets = append(buckets, b)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return buckets, nil
}
