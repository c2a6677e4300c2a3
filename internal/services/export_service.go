package services

import (
	"bytes"
	"cmp"
	"encoding/csv"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/clubstride/hourtrack/internal/models"
)

type ExportKind string

const (
	ExportHours        ExportKind = "hours"
	ExportDeliverables ExportKind = "deliverables"
	ExportReviews      ExportKind = "reviews"
	ExportSupportPlans ExportKind = "support_plans"
	ExportWins         ExportKind = "wins"
)

func ParseExportKind(raw string) (ExportKind, bool) {
	switch ExportKind(strings.ToLower(strings.TrimSpace(raw))) {
	case ExportHours:
		return ExportHours, true
	case ExportDeliverables:
		return ExportDeliverables, true
	case ExportReviews:
		return ExportReviews, true
	case ExportSupportPlans:
		return ExportSupportPlans, true
	case ExportWins:
		return ExportWins, true
	default:
		return "", false
	}
}

var (
	HoursCSVHeaders = []string{
		"id", "user_id", "date", "start_time", "end_time", "total_hours",
		"description", "approved", "reviewed_at", "reviewed_by", "created_at",
	}
	DeliverablesCSVHeaders = []string{
		"id", "user_id", "type", "description", "links", "proof_links", "status",
		"admin_comment", "comment_visible", "submitted_at", "reviewed_at", "reviewed_by",
	}
	ReviewsCSVHeaders = []string{
		"id", "lead_intern_id", "core_intern_id", "review_period", "review_date", "overall_vibe",
		"whats_working", "growth_areas", "needs_support", "hours_compliance", "content_created",
		"meeting_attendance", "dm_response_rate", "proof_uploaded", "notes", "created_at", "updated_at",
	}
	SupportPlansCSVHeaders = []string{
		"id", "lead_intern_id", "core_intern_id", "start_date", "challenge", "goal",
		"action_steps", "check_in_date", "status", "created_at", "updated_at",
	}
	WinsCSVHeaders = []string{
		"id", "lead_intern_id", "core_intern_id", "win_date", "description",
		"why_matters", "celebrated", "notes", "created_at",
	}
)

type ExportHourReader interface {
	ListForExport(userID uint, window models.ReportWindow) ([]models.HourEntry, error)
}

type ExportDeliverableReader interface {
	ListForExport(userID uint, window models.ReportWindow) ([]models.Deliverable, error)
}

type ExportLeadRecordReader interface {
	ListReviews(query models.LeadRecordQuery) ([]models.CoreReview, error)
	ListSupportPlans(query models.LeadRecordQuery) ([]models.SupportPlan, error)
	ListWins(query models.LeadRecordQuery) ([]models.Win, error)
}

type ExportRequest struct {
	Kind   ExportKind
	UserID uint
	From   string
	To     string
}

// ExportTable is one CSV document before encoding.
type ExportTable struct {
	Kind   ExportKind
	Header []string
	Rows   [][]string
}

type ExportService struct {
	hours        ExportHourReader
	deliverables ExportDeliverableReader
	records      ExportLeadRecordReader
	owners       WorkOwnerReader
	location     *time.Location
}

func NewExportService(hours ExportHourReader, deliverables ExportDeliverableReader, records ExportLeadRecordReader, owners WorkOwnerReader, location *time.Location) *ExportService {
	if location == nil {
		location = time.UTC
	}
	return &ExportService{
		hours:        hours,
		deliverables: deliverables,
		records:      records,
		owners:       owners,
		location:     location,
	}
}

// Build loads the rows for one export in id order. Hours and deliverables belong to one
// user (the caller when UserID is zero); lead records are scoped like ListReviews.
func (service *ExportService) Build(caller Caller, request ExportRequest) (ExportTable, error) {
	switch request.Kind {
	case ExportHours, ExportDeliverables:
		return service.buildWorkTable(caller, request)
	case ExportReviews, ExportSupportPlans, ExportWins:
		return service.buildLeadRecordTable(caller, request)
	default:
		return ExportTable{}, validationError("unknown export kind")
	}
}

func (service *ExportService) buildWorkTable(caller Caller, request ExportRequest) (ExportTable, error) {
	window, err := ParseReportWindow(request.From, request.To, service.location)
	if err != nil {
		return ExportTable{}, err
	}
	userID := request.UserID
	if userID == 0 {
		userID = caller.UserID
	}
	owner, err := loadWorkOwner(service.owners, userID)
	if err != nil {
		return ExportTable{}, err
	}
	if err := AuthorizeViewWorkOf(caller, owner); err != nil {
		return ExportTable{}, err
	}

	if request.Kind == ExportHours {
		entries, err := service.hours.ListForExport(owner.ID, window)
		if err != nil {
			return ExportTable{}, fmt.Errorf("load hours for export: %w", err)
		}
		return HoursTable(entries), nil
	}

	deliverables, err := service.deliverables.ListForExport(owner.ID, window)
	if err != nil {
		return ExportTable{}, fmt.Errorf("load deliverables for export: %w", err)
	}
	for index := range deliverables {
		deliverables[index] = SanitizeDeliverableForViewer(caller, deliverables[index])
	}
	return DeliverablesTable(deliverables), nil
}

func (service *ExportService) buildLeadRecordTable(caller Caller, request ExportRequest) (ExportTable, error) {
	query := models.LeadRecordQuery{CoreInternID: request.UserID}
	if caller.IsLeadIntern() {
		query.LeadInternID = caller.UserID
	}
	if err := AuthorizeReadLeadRecords(caller, query); err != nil {
		return ExportTable{}, err
	}

	switch request.Kind {
	case ExportReviews:
		reviews, err := service.records.ListReviews(query)
		if err != nil {
			return ExportTable{}, fmt.Errorf("load core reviews for export: %w", err)
		}
		return ReviewsTable(reviews), nil
	case ExportSupportPlans:
		plans, err := service.records.ListSupportPlans(query)
		if err != nil {
			return ExportTable{}, fmt.Errorf("load support plans for export: %w", err)
		}
		return SupportPlansTable(plans), nil
	default:
		wins, err := service.records.ListWins(query)
		if err != nil {
			return ExportTable{}, fmt.Errorf("load wins for export: %w", err)
		}
		return WinsTable(wins), nil
	}
}

func HoursTable(entries []models.HourEntry) ExportTable {
	sorted := slices.SortedFunc(slices.Values(entries), func(a, b models.HourEntry) int { return cmp.Compare(a.ID, b.ID) })
	rows := make([][]string, 0, len(sorted))
	for _, entry := range sorted {
		rows = append(rows, []string{
			csvUint(entry.ID),
			csvUint(entry.UserID),
			entry.Date,
			entry.StartTime,
			entry.EndTime,
			csvHours(entry.TotalHours),
			entry.Description,
			csvBool(entry.Approved),
			csvOptionalTime(entry.ReviewedAt),
			csvOptionalUint(entry.ReviewedBy),
			csvTime(entry.CreatedAt),
		})
	}
	return ExportTable{Kind: ExportHours, Header: HoursCSVHeaders, Rows: rows}
}

func DeliverablesTable(deliverables []models.Deliverable) ExportTable {
	sorted := slices.SortedFunc(slices.Values(deliverables), func(a, b models.Deliverable) int { return cmp.Compare(a.ID, b.ID) })
	rows := make([][]string, 0, len(sorted))
	for _, deliverable := range sorted {
		rows = append(rows, []string{
			csvUint(deliverable.ID),
			csvUint(deliverable.UserID),
			string(deliverable.Type),
			deliverable.Description,
			strings.Join(deliverable.Links, " "),
			strings.Join(deliverable.ProofLinks, " "),
			string(deliverable.Status),
			deliverable.AdminComment,
			csvBool(deliverable.CommentVisible),
			csvTime(deliverable.SubmittedAt),
			csvOptionalTime(deliverable.ReviewedAt),
			csvOptionalUint(deliverable.ReviewedBy),
		})
	}
	return ExportTable{Kind: ExportDeliverables, Header: DeliverablesCSVHeaders, Rows: rows}
}

func ReviewsTable(reviews []models.CoreReview) ExportTable {
	sorted := slices.SortedFunc(slices.Values(reviews), func(a, b models.CoreReview) int { return cmp.Compare(a.ID, b.ID) })
	rows := make([][]string, 0, len(sorted))
	for _, review := range sorted {
		rows = append(rows, []string{
			csvUint(review.ID),
			csvUint(review.LeadInternID),
			csvUint(review.CoreInternID),
			review.ReviewPeriod,
			review.ReviewDate,
			string(review.OverallVibe),
			review.WhatsWorking,
			review.GrowthAreas,
			string(review.NeedsSupport),
			review.HoursCompliance,
			review.ContentCreated,
			review.MeetingAttendance,
			review.DMResponseRate,
			review.ProofUploaded,
			review.Notes,
			csvTime(review.CreatedAt),
			csvTime(review.UpdatedAt),
		})
	}
	return ExportTable{Kind: ExportReviews, Header: ReviewsCSVHeaders, Rows: rows}
}

func SupportPlansTable(plans []models.SupportPlan) ExportTable {
	sorted := slices.SortedFunc(slices.Values(plans), func(a, b models.SupportPlan) int { return cmp.Compare(a.ID, b.ID) })
	rows := make([][]string, 0, len(sorted))
	for _, plan := range sorted {
		rows = append(rows, []string{
			csvUint(plan.ID),
			csvUint(plan.LeadInternID),
			csvUint(plan.CoreInternID),
			plan.StartDate,
			plan.Challenge,
			plan.Goal,
			plan.ActionSteps,
			plan.CheckInDate,
			string(plan.Status),
			csvTime(plan.CreatedAt),
			csvTime(plan.UpdatedAt),
		})
	}
	return ExportTable{Kind: ExportSupportPlans, Header: SupportPlansCSVHeaders, Rows: rows}
}

func WinsTable(wins []models.Win) ExportTable {
	sorted := slices.SortedFunc(slices.Values(wins), func(a, b models.Win) int { return cmp.Compare(a.ID, b.ID) })
	rows := make([][]string, 0, len(sorted))
	for _, win := range sorted {
		rows = append(rows, []string{
			csvUint(win.ID),
			csvUint(win.LeadInternID),
			csvUint(win.CoreInternID),
			win.WinDate,
			win.Description,
			win.WhyMatters,
			csvBool(win.Celebrated),
			win.Notes,
			csvTime(win.CreatedAt),
		})
	}
	return ExportTable{Kind: ExportWins, Header: WinsCSVHeaders, Rows: rows}
}

func EncodeCSV(table ExportTable) ([]byte, error) {
	var output bytes.Buffer
	writer := csv.NewWriter(&output)
	if err := writer.Write(table.Header); err != nil {
		return nil, err
	}
	if err := writer.WriteAll(table.Rows); err != nil {
		return nil, err
	}
	return output.Bytes(), nil
}

func ExportFilename(kind ExportKind, now time.Time) string {
	return fmt.Sprintf("hourtrack-%s-%s.csv", kind, now.Format(models.DateLayout))
}

func csvUint(value uint) string {
	return strconv.FormatUint(uint64(value), 10)
}

func csvOptionalUint(value *uint) string {
	if value == nil {
		return ""
	}
	return csvUint(*value)
}

func csvHours(value float64) string {
	return strconv.FormatFloat(RoundHours(value), 'f', 2, 64)
}

func csvBool(value bool) string {
	return strconv.FormatBool(value)
}

func csvTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}

func csvOptionalTime(value *time.Time) string {
	if value == nil {
		return ""
	}
	return csvTime(*value)
}
