package videolist

import (
	"context"
	"fmt"

	"github.com/dalemusser/ovaview/internal/domain/models"
)

// Bucket is one server-side page of video IDs.
type Bucket struct {
	IDs   []string
	Total int // total videos across all buckets
}

// BucketSource returns the IDs in positions [start, end) of the backend's
// ordering.
type BucketSource interface {
	LatestBucket(ctx context.Context, start, end int) (Bucket, error)
}

// BatchResolver loads full records for a set of IDs.
type BatchResolver interface {
	VideosByIDs(ctx context.Context, ids []string) ([]models.Video, error)
}

// BucketPager is the server-side pagination variant. The backend owns
// ordering and paging, so search, filters, and sort are not applied.
type BucketPager struct {
	src      BucketSource
	resolver BatchResolver
	pageSize int
}

// NewBucketPager returns a pager that requests pageSize IDs per bucket.
func NewBucketPager(src BucketSource, resolver BatchResolver, pageSize int) *BucketPager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &BucketPager{src: src, resolver: resolver, pageSize: pageSize}
}

// PageSize returns the bucket size.
func (p *BucketPager) PageSize() int {
	return p.pageSize
}

// Fetch loads the requested page. When page is past the last bucket it is
// clamped and the last bucket is fetched instead. On error the returned Page
// is empty and valid to render.
func (p *BucketPager) Fetch(ctx context.Context, page int) (Page, error) {
	empty := newPage(nil, 0, 1, p.pageSize)

	requested := page
	if page < 1 {
		page = 1
	}
	bucket, err := p.bucket(ctx, page)
	if err != nil {
		return empty, err
	}

	total := TotalPages(bucket.Total, p.pageSize)
	if page > total {
		page = total
		if bucket, err = p.bucket(ctx, page); err != nil {
			return empty, err
		}
	}

	items, err := p.resolve(ctx, bucket.IDs)
	if err != nil {
		return empty, err
	}

	out := newPage(items, bucket.Total, page, p.pageSize)
	out.Clamped = page != requested
	return out, nil
}

func (p *BucketPager) bucket(ctx context.Context, page int) (Bucket, error) {
	start := (page - 1) * p.pageSize
	b, err := p.src.LatestBucket(ctx, start, start+p.pageSize)
	if err != nil {
		return Bucket{}, fmt.Errorf("fetch bucket %d: %w", page, err)
	}
	if len(b.IDs) > p.pageSize {
		b.IDs = b.IDs[:p.pageSize]
	}
	return b, nil
}

// resolve loads records for ids and returns them in ids order. IDs the
// backend could not resolve are dropped.
func (p *BucketPager) resolve(ctx context.Context, ids []string) ([]models.Video, error) {
	if len(ids) == 0 {
		return []models.Video{}, nil
	}
	videos, err := p.resolver.VideosByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve %d ids: %w", len(ids), err)
	}
	return OrderByIDs(videos, ids), nil
}

// OrderByIDs returns the videos whose IDs appear in ids, in ids order.
func OrderByIDs(videos []models.Video, ids []string) []models.Video {
	byID := make(map[string]models.Video, len(videos))
	for _, v := range videos {
		byID[v.VideoID] = v
	}
	out := make([]models.Video, 0, len(ids))
	for _, id := range ids {
		if v, ok := byID[id]; ok {
			out = append(out, v)
		}
	}
	return out
}
