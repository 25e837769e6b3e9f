package classroom

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	classroom "google.golang.org/api/classroom/v1"
	"google.golang.org/api/option"
)

// Client wraps the Classroom Courses service
type Client struct {
	svc *classroom.CoursesService
}

// NewClient creates a Classroom client authorized by ts.
func NewClient(ctx context.Context, ts oauth2.TokenSource, opts ...option.ClientOption) (*Client, error) {
	httpClient := oauth2.NewClient(ctx, ts)

	svc, err := classroom.NewService(ctx, append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Classroom service: %w", err)
	}

	return &Client{svc: svc.Courses}, nil
}

// ListCourses returns the user's courses.
func (c *Client) ListCourses(ctx context.Context) ([]*classroom.Course, error) {
	resp, err := c.svc.List().Fields("courses/id", "courses/name").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return resp.Courses, nil
}

// ListAnnouncements returns the course's announcements as posts.
func (c *Client) ListAnnouncements(ctx context.Context, courseID string) ([]Post, error) {
	resp, err := c.svc.Announcements.List(courseID).Fields(
		"announcements/text",
		"announcements/updateTime",
	).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements for course %s: %w", courseID, err)
	}

	posts := make([]Post, 0, len(resp.Announcements))
	for _, a := range resp.Announcements {
		posts = append(posts, Post{
			Title:      orDefault(a.Text, PlaceholderText),
			Kind:       KindAnnouncement,
			UpdateTime: a.UpdateTime,
		})
	}
	return posts, nil
}

// ListAssignments returns the course's coursework as posts.
func (c *Client) ListAssignments(ctx context.Context, courseID string) ([]Post, error) {
	resp, err := c.svc.CourseWork.List(courseID).Fields(
		"courseWork/title",
		"courseWork/updateTime",
	).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list coursework for course %s: %w", courseID, err)
	}

	posts := make([]Post, 0, len(resp.CourseWork))
	for _, w := range resp.CourseWork {
		posts = append(posts, Post{
			Title:      orDefault(w.Title, PlaceholderTitle),
			Kind:       KindAssignment,
			UpdateTime: w.UpdateTime,
		})
	}
	return posts, nil
}

// ListMaterials returns the course's coursework materials as posts.
func (c *Client) ListMaterials(ctx context.Context, courseID string) ([]Post, error) {
	resp, err := c.svc.CourseWorkMaterials.List(courseID).Fields(
		"courseWorkMaterial/title",
		"courseWorkMaterial/updateTime",
	).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list coursework materials for course %s: %w", courseID, err)
	}

	posts := make([]Post, 0, len(resp.CourseWorkMaterial))
	for _, m := range resp.CourseWorkMaterial {
		posts = append(posts, Post{
			Title:      orDefault(m.Title, PlaceholderTitle),
			Kind:       KindMaterial,
			UpdateTime: m.UpdateTime,
		})
	}
	return posts, nil
}

// CoursePosts merges the three streams of a course and keeps the newest
// DefaultTopPosts.
func (c *Client) CoursePosts(ctx context.Context, courseID string) ([]Post, error) {
	announcements, err := c.ListAnnouncements(ctx, courseID)
	if err != nil {
		return nil, err
	}
	assignments, err := c.ListAssignments(ctx, courseID)
	if err != nil {
		return nil, err
	}
	materials, err := c.ListMaterials(ctx, courseID)
	if err != nil {
		return nil, err
	}

	all := make([]Post, 0, len(announcements)+len(assignments)+len(materials))
	all = append(all, announcements...)
	all = append(all, assignments...)
	all = append(all, materials...)

	return TopPosts(all, DefaultTopPosts), nil
}

// PostsByCourse returns the top posts of every course keyed by course name.
// Courses sharing a name overwrite each other; the last one listed wins.
func (c *Client) PostsByCourse(ctx context.Context) (map[string][]Post, error) {
	courses, err := c.ListCourses(ctx)
	if err != nil {
		return nil, err
	}

	byCourse := make(map[string][]Post, len(courses))
	for _, course := range courses {
		posts, err := c.CoursePosts(ctx, course.Id)
		if err != nil {
			return nil, err
		}
		byCourse[orDefault(course.Name, PlaceholderCourseName)] = posts
	}
	return byCourse, nil
}
