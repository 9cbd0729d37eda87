// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/coursepath/internal/catalog"
	"github.com/tomtom215/coursepath/internal/metrics"
)

var _ catalog.Catalog = (*DB)(nil)

// courseColumns are selected in the order scanCourse expects.
const courseColumns = `c.id, c.title, c.instructor, c.rating, c.num_reviews, c.students,
	c.is_bestseller, c.price, c.lectures, c.sections, c.duration, c.url`

// rankOrder mirrors catalog.Rank; position breaks ties in catalog order.
const rankOrder = `ORDER BY c.is_bestseller DESC, c.rating DESC, c.students DESC, c.position`

// UpsertCourses inserts or updates courses. An existing course keeps its
// catalog position; its topic tags are replaced.
func (db *DB) UpsertCourses(ctx context.Context, courses []catalog.Course) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert", "courses", time.Since(start), err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i := range courses {
		if err = upsertCourse(ctx, tx, &courses[i]); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit courses: %w", err)
	}
	return nil
}

func upsertCourse(ctx context.Context, tx *sql.Tx, c *catalog.Course) error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("course without id: %q", c.Title)
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO courses (id, title, instructor, rating, num_reviews, students,
			is_bestseller, price, lectures, sections, duration, url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			instructor = excluded.instructor,
			rating = excluded.rating,
			num_reviews = excluded.num_reviews,
			students = excluded.students,
			is_bestseller = excluded.is_bestseller,
			price = excluded.price,
			lectures = excluded.lectures,
			sections = excluded.sections,
			duration = excluded.duration,
			url = excluded.url`,
		c.ID, c.Title, c.Instructor, c.Rating, c.NumReviews, c.Students,
		c.IsBestseller, c.Price, c.Lectures, c.Sections, c.Duration, c.URL)
	if err != nil {
		return fmt.Errorf("upsert course %s: %w", c.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM course_topics WHERE course_id = ?`, c.ID); err != nil {
		return fmt.Errorf("clear topics of %s: %w", c.ID, err)
	}

	seen := make(map[string]struct{}, len(c.Topics))
	pos := 0
	for _, topic := range c.Topics {
		topic = strings.TrimSpace(topic)
		if topic == "" {
			continue
		}
		if _, dup := seen[topic]; dup {
			continue
		}
		seen[topic] = struct{}{}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO course_topics (course_id, position, topic) VALUES (?, ?, ?)`,
			c.ID, pos, topic); err != nil {
			return fmt.Errorf("insert topic %q of %s: %w", topic, c.ID, err)
		}
		pos++
	}
	return nil
}

// Lookup implements catalog.Catalog.
func (db *DB) Lookup(ctx context.Context, topic string, limit int) ([]catalog.Course, error) {
	query := `SELECT ` + courseColumns + `
		FROM courses c JOIN course_topics t ON t.course_id = c.id
		WHERE t.topic = ? ` + rankOrder
	return db.queryCourses(ctx, "lookup", query, limit, topic)
}

// Search implements catalog.Catalog.
func (db *DB) Search(ctx context.Context, keyword string, limit int) ([]catalog.Course, error) {
	query := `SELECT ` + courseColumns + `
		FROM courses c
		WHERE contains(lower(c.title), lower(?)) ` + rankOrder
	return db.queryCourses(ctx, "search", query, limit, keyword)
}

// Get implements catalog.Catalog.
func (db *DB) Get(ctx context.Context, id string) (catalog.Course, error) {
	courses, err := db.queryCourses(ctx, "get", `SELECT `+courseColumns+` FROM courses c WHERE c.id = ?`, 1, id)
	if err != nil {
		return catalog.Course{}, err
	}
	if len(courses) == 0 {
		return catalog.Course{}, catalog.ErrCourseNotFound
	}
	return courses[0], nil
}

// CountCourses returns the number of catalog courses.
func (db *DB) CountCourses(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count courses: %w", err)
	}
	return n, nil
}

func (db *DB) queryCourses(ctx context.Context, op, query string, limit int, args ...any) (courses []catalog.Course, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery(op, "courses", time.Since(start), err) }()

	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query courses: %w", err)
	}
	defer closeRows(rows)

	courses = make([]catalog.Course, 0)
	for rows.Next() {
		var c catalog.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Instructor, &c.Rating, &c.NumReviews, &c.Students,
			&c.IsBestseller, &c.Price, &c.Lectures, &c.Sections, &c.Duration, &c.URL); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate courses: %w", err)
	}

	if err := db.attachTopics(ctx, courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// attachTopics loads the ordered topic tags of courses.
func (db *DB) attachTopics(ctx context.Context, courses []catalog.Course) error {
	if len(courses) == 0 {
		return nil
	}

	index := make(map[string]int, len(courses))
	placeholders := make([]string, len(courses))
	args := make([]any, len(courses))
	for i := range courses {
		index[courses[i].ID] = i
		courses[i].Topics = []string{}
		placeholders[i] = "?"
		args[i] = courses[i].ID
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT course_id, topic FROM course_topics WHERE course_id IN (`+strings.Join(placeholders, ", ")+`)
		ORDER BY course_id, position`, args...)
	if err != nil {
		return fmt.Errorf("query course topics: %w", err)
	}
	defer closeRows(rows)

	for rows.Next() {
		var id, topic string
		if err := rows.Scan(&id, &topic); err != nil {
			return fmt.Errorf("scan course topic: %w", err)
		}
		if i, ok := index[id]; ok {
			courses[i].Topics = append(courses[i].Topics, topic)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate course topics: %w", err)
	}
	return nil
}

// isNoRows reports whether err is sql.ErrNoRows.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
