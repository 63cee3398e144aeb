package importer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClientUpload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/imports/upload", r.URL.Path)
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "results.docx", header.Filename)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success":    true,
			"session_id": "sess-1",
			"summary":    map[string]int{"total_extracted": 50, "total_matched": 45, "ready_for_review": 45},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, WithToken("tok-1"))
	result, err := client.Upload(context.Background(), "results.docx", 11, strings.NewReader("PK fake docx"))
	require.NoError(t, err)
	require.Equal(t, "sess-1", result.SessionID)
	require.Equal(t, 50, result.Summary.TotalExtracted)
	require.Equal(t, 45, result.Summary.TotalMatched)
}

func TestClientUploadGateRejectsBeforeRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an invalid file")
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Upload(context.Background(), "results.pdf", 10, strings.NewReader("x"))
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestClientUploadRejectedByServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "no candidate records found in document"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Upload(context.Background(), "results.docx", 10, strings.NewReader("x"))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Equal(t, "no candidate records found in document", apiErr.Message)
}

func TestClientFetchSession(t *testing.T) {
	expires := time.Now().UTC().Add(30 * time.Minute).Truncate(time.Second)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/imports/sessions/sess-1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success":           true,
			"session_id":        "sess-1",
			"original_filename": "results.docx",
			"summary":           map[string]int{"total_extracted": 2, "total_matched": 2, "ready_for_review": 2},
			"review_data": []map[string]interface{}{
				{
					"student_id":               1,
					"matric_no":                "ABC/12/0001",
					"student_name":             "Ada",
					"current_class_of_degree":  "Second Class Lower",
					"proposed_class_of_degree": "Second Class Upper",
					"match_confidence":         "exact",
					"needs_update":             true,
					"approved":                 false,
					"source":                   "table",
					"row_number":               2,
				},
			},
			"expires_at": expires,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	session, err := client.FetchSession(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Equal(t, "sess-1", session.SessionID)
	require.Len(t, session.ReviewData, 1)
	require.Equal(t, "ABC/12/0001", session.ReviewData[0].MatricNo)
	require.Equal(t, MatchExact, session.ReviewData[0].MatchConfidence)
	require.True(t, session.ReviewData[0].NeedsUpdate)
	require.True(t, session.ExpiresAt.Equal(expires))
}

func TestClientFetchSessionNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "import session not found"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.FetchSession(context.Background(), "missing")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestClientFetchSessionExpired(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "import session has expired"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.FetchSession(context.Background(), "old")
	require.ErrorIs(t, err, ErrSessionExpired)
}

func TestClientFetchSessionRequiresID(t *testing.T) {
	client := NewClient("http://localhost:0")
	_, err := client.FetchSession(context.Background(), "  ")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestClientSubmitApprovals(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/imports/sessions/sess-1/approvals", r.URL.Path)

		var req struct {
			SessionID string             `json:"session_id"`
			Approvals []ApprovalDecision `json:"approvals"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "sess-1", req.SessionID)
		require.Len(t, req.Approvals, 2)

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"result": map[string]interface{}{
				"updated_count": 1,
				"error_count":   1,
				"errors":        []string{"ABC/12/0002: update failed"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.SubmitApprovals(context.Background(), "sess-1", []ApprovalDecision{
		{StudentID: 1, MatricNo: "ABC/12/0001", ProposedClassOfDegree: "Second Class Upper", Approved: true},
		{StudentID: 2, MatricNo: "ABC/12/0002", ProposedClassOfDegree: "Third Class", Approved: true},
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.UpdatedCount)
	require.Equal(t, 1, result.ErrorCount)
	require.Len(t, result.Errors, 1)
}

func TestClientTokenProviderConsultedPerRequest(t *testing.T) {
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success":     true,
			"session_id":  "sess-1",
			"review_data": []interface{}{},
		})
	}))
	defer server.Close()

	tokens := []string{"first", "second"}
	client := NewClient(server.URL, WithTokenProvider(func() string {
		token := tokens[0]
		tokens = tokens[1:]
		return token
	}))

	_, err := client.FetchSession(context.Background(), "sess-1")
	require.NoError(t, err)
	_, err = client.FetchSession(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Equal(t, []string{"Bearer first", "Bearer second"}, seen)
}

func TestClientSubmitApprovalsExpired(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "import session has expired"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.SubmitApprovals(context.Background(), "sess-1", []ApprovalDecision{{MatricNo: "A", Approved: true}})
	require.ErrorIs(t, err, ErrSessionExpired)
}
