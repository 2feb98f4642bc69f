package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/user/cloudscope/internal/model"
)

// HostStorage handles cloud host persistence.
type HostStorage struct {
	db *DB
}

// NewHostStorage creates a new host storage handler.
func NewHostStorage(db *DB) *HostStorage {
	return &HostStorage{db: db}
}

// SaveBatch inserts a batch of host records, skipping any (ip, domain)
// pair already present, and returns the number of newly admitted rows.
func (s *HostStorage) SaveBatch(records []model.HostRecord) (int, error) {
	query := `INSERT INTO cloud_hosts (ip, domain, provider, country, headers, status_code, title, discovered_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			  ON CONFLICT(ip, domain) DO NOTHING`

	added := 0
	for _, r := range records {
		headers, err := json.Marshal(r.Headers)
		if err != nil {
			headers = []byte("{}")
		}

		discovered := r.DiscoveredAt
		if discovered.IsZero() {
			discovered = time.Now()
		}

		result, err := s.db.Exec(query,
			r.IP, r.Domain, r.Provider, r.Country,
			string(headers), r.StatusCode, r.Title, discovered)
		if err != nil {
			return added, fmt.Errorf("failed to save host %s: %w", r.IP, err)
		}

		n, err := result.RowsAffected()
		if err == nil {
			added += int(n)
		}
	}
	return added, nil
}

// List returns a filtered, paginated host listing.
func (s *HostStorage) List(filter model.HostFilter) (*model.HostPage, error) {
	var conditions []string
	var params []interface{}

	if filter.Provider != "" && filter.Provider != "all" {
		conditions = append(conditions, "provider = ?")
		params = append(params, filter.Provider)
	}
	if filter.Country != "" && filter.Country != "all" {
		conditions = append(conditions, "country = ?")
		params = append(params, filter.Country)
	}
	if filter.SelectedOnly {
		conditions = append(conditions, "selected = 1")
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM cloud_hosts %s", where)
	if err := s.db.QueryRow(countQuery, params...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count hosts: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 {
		perPage = 100
	}
	offset := (page - 1) * perPage

	listQuery := fmt.Sprintf(`SELECT id, ip, domain, provider, country, headers, status_code, title, selected, discovered_at
			  FROM cloud_hosts %s
			  ORDER BY discovered_at DESC
			  LIMIT ? OFFSET ?`, where)
	params = append(params, perPage, offset)

	rows, err := s.db.Query(listQuery, params...)
	if err != nil {
		return nil, fmt.Errorf("failed to query hosts: %w", err)
	}
	defer rows.Close()

	hosts := make([]model.HostRecord, 0, perPage)
	for rows.Next() {
		host, err := scanHost(rows)
		if err != nil {
			return nil, err
		}
		hosts = append(hosts, host)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &model.HostPage{
		Hosts: hosts,
		Total: total,
		Page:  page,
		Pages: (total + perPage - 1) / perPage,
	}, nil
}

// GetSelected returns all selected hosts, newest first.
func (s *HostStorage) GetSelected() ([]model.HostRecord, error) {
	query := `SELECT id, ip, domain, provider, country, headers, status_code, title, selected, discovered_at
			  FROM cloud_hosts WHERE selected = 1 ORDER BY discovered_at DESC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query selected hosts: %w", err)
	}
	defer rows.Close()

	var hosts []model.HostRecord
	for rows.Next() {
		host, err := scanHost(rows)
		if err != nil {
			return nil, err
		}
		hosts = append(hosts, host)
	}
	return hosts, rows.Err()
}

// Toggle flips the selected flag on one host and returns the new value.
func (s *HostStorage) Toggle(id int64) (bool, error) {
	var selected bool
	err := s.db.QueryRow(
		`UPDATE cloud_hosts SET selected = NOT selected WHERE id = ? RETURNING selected`,
		id).Scan(&selected)
	if err == sql.ErrNoRows {
		return false, fmt.Errorf("host %d not found", id)
	}
	if err != nil {
		return false, fmt.Errorf("failed to toggle host %d: %w", id, err)
	}
	return selected, nil
}

// Stats returns aggregate counts for the dashboard.
func (s *HostStorage) Stats() (*model.Stats, error) {
	stats := &model.Stats{}

	if err := s.db.QueryRow("SELECT COUNT(*) FROM cloud_hosts").Scan(&stats.Total); err != nil {
		return nil, fmt.Errorf("failed to count hosts: %w", err)
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM cloud_hosts WHERE selected = 1").Scan(&stats.Selected); err != nil {
		return nil, fmt.Errorf("failed to count selected: %w", err)
	}

	byProvider, err := s.countBy("provider")
	if err != nil {
		return nil, err
	}
	stats.ByProvider = byProvider

	byCountry, err := s.countBy("country")
	if err != nil {
		return nil, err
	}
	stats.ByCountry = byCountry

	return stats, nil
}

func (s *HostStorage) countBy(column string) ([]model.ProviderCount, error) {
	query := fmt.Sprintf(
		`SELECT %s, COUNT(*) as count FROM cloud_hosts GROUP BY %s ORDER BY count DESC`,
		column, column)

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate by %s: %w", column, err)
	}
	defer rows.Close()

	var counts []model.ProviderCount
	for rows.Next() {
		var c model.ProviderCount
		if err := rows.Scan(&c.Key, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func scanHost(rows *sql.Rows) (model.HostRecord, error) {
	var host model.HostRecord
	var headers sql.NullString

	if err := rows.Scan(&host.ID, &host.IP, &host.Domain, &host.Provider,
		&host.Country, &headers, &host.StatusCode, &host.Title,
		&host.Selected, &host.DiscoveredAt); err != nil {
		return host, fmt.Errorf("failed to scan host: %w", err)
	}

	host.Headers = map[string]string{}
	if headers.Valid && headers.String != "" {
		json.Unmarshal([]byte(headers.String), &host.Headers)
	}
	return host, nil
}
