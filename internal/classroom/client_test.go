package classroom

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	classroom "google.golang.org/api/classroom/v1"
	"google.golang.org/api/option"
)

// fakeClassroom serves the four list endpoints from canned data.
type fakeClassroom struct {
	courses       []*classroom.Course
	announcements map[string][]*classroom.Announcement
	coursework    map[string][]*classroom.CourseWork
	materials     map[string][]*classroom.CourseWorkMaterial
	failPath      string
	calls         []string
}

func (f *fakeClassroom) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls = append(f.calls, r.URL.Path)
	w.Header().Set("Content-Type", "application/json")

	if f.failPath != "" && strings.HasSuffix(r.URL.Path, f.failPath) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"The caller does not have permission"}}`))
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case len(parts) == 2 && parts[1] == "courses":
		_ = json.NewEncoder(w).Encode(&classroom.ListCoursesResponse{Courses: f.courses})
	case len(parts) == 4 && parts[3] == "announcements":
		_ = json.NewEncoder(w).Encode(&classroom.ListAnnouncementsResponse{Announcements: f.announcements[parts[2]]})
	case len(parts) == 4 && parts[3] == "courseWork":
		_ = json.NewEncoder(w).Encode(&classroom.ListCourseWorkResponse{CourseWork: f.coursework[parts[2]]})
	case len(parts) == 4 && parts[3] == "courseWorkMaterials":
		_ = json.NewEncoder(w).Encode(&classroom.ListCourseWorkMaterialResponse{CourseWorkMaterial: f.materials[parts[2]]})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestClient(t *testing.T, fake http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test"})
	client, err := NewClient(t.Context(), ts, option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	return client
}

func TestClient_PostsByCourse(t *testing.T) {
	fake := &fakeClassroom{
		courses: []*classroom.Course{
			{Id: "c1", Name: "Matemática"},
			{Id: "c2"},
		},
		announcements: map[string][]*classroom.Announcement{
			"c1": {
				{Text: "Bienvenidos", UpdateTime: "2024-03-01T10:00:00Z"},
				{Text: "", UpdateTime: "2024-03-03T10:00:00Z"},
			},
		},
		coursework: map[string][]*classroom.CourseWork{
			"c1": {{Title: "Tarea 1", UpdateTime: "2024-03-02T10:00:00Z"}},
			"c2": {{Title: "", UpdateTime: "2024-04-01T10:00:00Z"}},
		},
		materials: map[string][]*classroom.CourseWorkMaterial{
			"c2": {{Title: "Sílabo", UpdateTime: "2024-04-02T10:00:00Z"}},
		},
	}
	client := newTestClient(t, fake)

	byCourse, err := client.PostsByCourse(t.Context())
	require.NoError(t, err)

	assert.Equal(t, map[string][]Post{
		"Matemática": {
			{Title: PlaceholderText, Kind: KindAnnouncement, UpdateTime: "2024-03-03T10:00:00Z"},
			{Title: "Tarea 1", Kind: KindAssignment, UpdateTime: "2024-03-02T10:00:00Z"},
			{Title: "Bienvenidos", Kind: KindAnnouncement, UpdateTime: "2024-03-01T10:00:00Z"},
		},
		PlaceholderCourseName: {
			{Title: "Sílabo", Kind: KindMaterial, UpdateTime: "2024-04-02T10:00:00Z"},
			{Title: PlaceholderTitle, Kind: KindAssignment, UpdateTime: "2024-04-01T10:00:00Z"},
		},
	}, byCourse)

	assert.Equal(t, []string{
		"/v1/courses",
		"/v1/courses/c1/announcements",
		"/v1/courses/c1/courseWork",
		"/v1/courses/c1/courseWorkMaterials",
		"/v1/courses/c2/announcements",
		"/v1/courses/c2/courseWork",
		"/v1/courses/c2/courseWorkMaterials",
	}, fake.calls)
}

func TestClient_PostsByCourse_DuplicateNamesOverwrite(t *testing.T) {
	fake := &fakeClassroom{
		courses: []*classroom.Course{
			{Id: "c1", Name: "Historia"},
			{Id: "c2", Name: "Historia"},
		},
		coursework: map[string][]*classroom.CourseWork{
			"c1": {{Title: "from c1", UpdateTime: "2024-01-01T00:00:00Z"}},
			"c2": {{Title: "from c2", UpdateTime: "2024-01-01T00:00:00Z"}},
		},
	}
	client := newTestClient(t, fake)

	byCourse, err := client.PostsByCourse(t.Context())
	require.NoError(t, err)

	require.Len(t, byCourse, 1)
	assert.Equal(t, "from c2", byCourse["Historia"][0].Title)
}

func TestClient_PostsByCourse_NoCourses(t *testing.T) {
	client := newTestClient(t, &fakeClassroom{})

	byCourse, err := client.PostsByCourse(t.Context())
	require.NoError(t, err)
	assert.Empty(t, byCourse)
}

func TestClient_PostsByCourse_UpstreamError(t *testing.T) {
	fake := &fakeClassroom{
		courses:  []*classroom.Course{{Id: "c1", Name: "Física"}},
		failPath: "/courseWork",
	}
	client := newTestClient(t, fake)

	_, err := client.PostsByCourse(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list coursework for course c1")
}
