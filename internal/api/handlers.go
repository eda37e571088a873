package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/equitytax/tax-calculator/internal/domain"
	"github.com/equitytax/tax-calculator/internal/output"
	"github.com/equitytax/tax-calculator/internal/service"
	"github.com/equitytax/tax-calculator/internal/storage"
)

// Handler serves the tax return endpoints.
type Handler struct {
	svc *service.TaxReturnService
	log *zap.Logger
	now func() time.Time
}

// NewHandler creates a handler. A nil logger discards output.
func NewHandler(svc *service.TaxReturnService, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// personalInfoRequest carries the SSN, which the stored JSON form omits.
type personalInfoRequest struct {
	FirstName    string              `json:"first_name"`
	LastName     string              `json:"last_name"`
	SSN          string              `json:"ssn"`
	DateOfBirth  string              `json:"date_of_birth"`
	Address      domain.Address      `json:"address"`
	FilingStatus domain.FilingStatus `json:"filing_status"`
}

type returnRequest struct {
	UserID       string                    `json:"user_id"`
	TaxYear      int                       `json:"tax_year"`
	Priority     domain.Priority           `json:"priority"`
	PersonalInfo personalInfoRequest       `json:"personal_info"`
	Income       domain.IncomeBreakdown    `json:"income"`
	Deductions   domain.DeductionSelection `json:"deductions"`
}

// toReturn converts the request body. Date of birth accepts YYYY-MM-DD or RFC 3339.
func (req returnRequest) toReturn(c *gin.Context) (*domain.TaxReturn, error) {
	var dob time.Time
	if s := strings.TrimSpace(req.PersonalInfo.DateOfBirth); s != "" {
		var err error
		if dob, err = time.Parse("2006-01-02", s); err != nil {
			if dob, err = time.Parse(time.RFC3339, s); err != nil {
				return nil, domain.ValidationErrors{{Field: "personal_info.date_of_birth", Message: "must be YYYY-MM-DD"}}
			}
		}
	}
	return &domain.TaxReturn{
		UserID:   req.UserID,
		TaxYear:  req.TaxYear,
		Priority: req.Priority,
		PersonalInfo: domain.PersonalInfo{
			FirstName:    req.PersonalInfo.FirstName,
			LastName:     req.PersonalInfo.LastName,
			SSN:          req.PersonalInfo.SSN,
			DateOfBirth:  dob,
			Address:      req.PersonalInfo.Address,
			FilingStatus: req.PersonalInfo.FilingStatus,
		},
		Income:     req.Income,
		Deductions: req.Deductions,
		Metadata: domain.Metadata{
			IPAddress:        c.ClientIP(),
			UserAgent:        c.Request.UserAgent(),
			SubmissionMethod: domain.SubmissionAPI,
		},
	}, nil
}

func (h *Handler) bindReturn(c *gin.Context) (*domain.TaxReturn, bool) {
	var req returnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return nil, false
	}
	ret, err := req.toReturn(c)
	if err != nil {
		h.sendError(c, err)
		return nil, false
	}
	return ret, true
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "tax_years": h.svc.Calculator().Rules.Years()})
}

// Estimate computes a preview without storing anything.
func (h *Handler) Estimate(c *gin.Context) {
	var req service.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}
	p, err := h.svc.Preview(req)
	if err != nil {
		h.sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) CreateReturn(c *gin.Context) {
	in, ok := h.bindReturn(c)
	if !ok {
		return
	}
	r, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		h.sendError(c, err)
		return
	}
	c.Header("Location", "/api/v1/returns/"+r.ID)
	c.JSON(http.StatusCreated, r)
}

func (h *Handler) UpdateReturn(c *gin.Context) {
	in, ok := h.bindReturn(c)
	if !ok {
		return
	}
	r, err := h.svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) GetReturn(c *gin.Context) {
	r, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) DeleteReturn(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.sendError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListReturns filters by ?user_id= and ?status=. ?status=pending without a
// user returns the review queue in priority order.
func (h *Handler) ListReturns(c *gin.Context) {
	f := storage.Filter{UserID: c.Query("user_id"), Status: domain.ReturnStatus(c.Query("status"))}
	if f.Status != "" && !f.Status.Valid() {
		h.sendError(c, domain.ValidationErrors{{Field: "status", Message: fmt.Sprintf("unknown status %q", f.Status)}})
		return
	}

	var (
		out []*domain.TaxReturn
		err error
	)
	if f.UserID == "" && f.Status == domain.StatusPending {
		out, err = h.svc.FindPending(c.Request.Context())
	} else {
		out, err = h.svc.List(c.Request.Context(), f)
	}
	if err != nil {
		h.sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"returns": out, "count": len(out)})
}

func (h *Handler) SubmitReturn(c *gin.Context) {
	r, err := h.svc.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

type reviewRequest struct {
	Action   string `json:"action" binding:"required"`
	Reviewer string `json:"reviewer"`
	Reason   string `json:"reason"`
	Comments string `json:"comments"`
}

// ReviewReturn applies an admin lifecycle action.
func (h *Handler) ReviewReturn(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if req.Reviewer == "" {
		req.Reviewer = c.GetHeader("X-Reviewer")
	}

	ctx, id := c.Request.Context(), c.Param("id")
	var (
		r   *domain.TaxReturn
		err error
	)
	switch strings.ToLower(req.Action) {
	case "start":
		r, err = h.svc.StartReview(ctx, id, req.Reviewer)
	case "approve":
		r, err = h.svc.Approve(ctx, id, req.Reviewer, req.Comments)
	case "reject":
		r, err = h.svc.Reject(ctx, id, req.Reviewer, req.Reason, req.Comments)
	case "complete":
		r, err = h.svc.Complete(ctx, id)
	default:
		h.badRequest(c, fmt.Sprintf("unknown action %q: use start, approve, reject, or complete", req.Action))
		return
	}
	if err != nil {
		h.sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// Brackets returns the rules for a year. ?filing_status= selects a status table.
func (h *Handler) Brackets(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		h.badRequest(c, "year must be a number")
		return
	}
	fs, ok := h.filingStatusQuery(c)
	if !ok {
		return
	}

	calc := h.svc.Calculator()
	table, err := calc.TableFor(year, fs)
	if err != nil {
		h.sendError(c, err)
		return
	}
	standard, _ := calc.StandardDeduction(year, fs)
	c.JSON(http.StatusOK, gin.H{
		"year":               year,
		"filing_status":      fs,
		"standard_deduction": standard,
		"brackets":           table.Brackets(),
	})
}

// TaxForAmount computes tax for ?income= under a year's table.
func (h *Handler) TaxForAmount(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		h.badRequest(c, "year must be a number")
		return
	}
	income, err := decimal.NewFromString(c.Query("income"))
	if err != nil || income.IsNegative() {
		h.badRequest(c, "income must be a non-negative number")
		return
	}
	fs, ok := h.filingStatusQuery(c)
	if !ok {
		return
	}
	est, err := h.svc.Calculator().EstimateTax(year, fs, income)
	if err != nil {
		h.sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, est)
}

// filingStatusQuery reads ?filing_status=, defaulting to single.
func (h *Handler) filingStatusQuery(c *gin.Context) (domain.FilingStatus, bool) {
	fs := domain.FilingStatus(c.DefaultQuery("filing_status", string(domain.FilingSingle)))
	if !fs.Valid() {
		h.sendError(c, domain.ValidationErrors{{Field: "filing_status", Message: fmt.Sprintf("must be one of %v", domain.FilingStatuses)}})
		return "", false
	}
	return fs, true
}

// Download renders a stored return through an output formatter.
func (h *Handler) Download(c *gin.Context) {
	f, err := output.LookupFormatter(c.DefaultQuery("format", "pdf"))
	if err != nil {
		h.sendError(c, err)
		return
	}
	r, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.sendError(c, err)
		return
	}
	rep, err := output.BuildReport(h.svc.Calculator(), r, h.now())
	if err != nil {
		h.sendError(c, err)
		return
	}
	data, err := f.Format(rep)
	if err != nil {
		h.sendError(c, err)
		return
	}
	filename := fmt.Sprintf("tax_return_%s_%d.%s", r.ID, r.TaxYear, f.Extension())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentTypes[f.Extension()], data)
}

var contentTypes = map[string]string{
	"pdf":  "application/pdf",
	"json": "application/json",
	"csv":  "text/csv; charset=utf-8",
	"yaml": "application/yaml",
	"txt":  "text/plain; charset=utf-8",
}
