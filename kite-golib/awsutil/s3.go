package awsutil

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/kiteco/govw/kite-golib/envutil"
)

// defaultRegion is used to discover the region a bucket lives in
var defaultRegion = envutil.GetenvDefault("AWS_REGION", "us-west-1")

// IsS3URI returns true if the path is an s3 uri.
func IsS3URI(path string) bool {
	return strings.HasPrefix(path, "s3://")
}

// ValidateURI parses uri and checks that it is of the form s3://bucket/key
func ValidateURI(uri string) (*url.URL, error) {
	s3url, err := url.Parse(uri)
	if err != nil {
		return nil, err
	}
	if s3url.Scheme != "s3" {
		return nil, fmt.Errorf("%s: url is not a s3 path", uri)
	}
	if s3url.Host == "" || strings.TrimPrefix(s3url.Path, "/") == "" {
		return nil, fmt.Errorf("%s: s3 url needs both a bucket and a key", uri)
	}
	return s3url, nil
}

// NewS3Reader returns a io.ReadCloser that will read the contents
// of the file pointed to by the uri. URI will be of the form
// s3://bucket-name/path/to/file
func NewS3Reader(uri string) (io.ReadCloser, error) {
	s3url, err := ValidateURI(uri)
	if err != nil {
		return nil, err
	}

	region, err := objectRegion(s3url)
	if err != nil {
		return nil, fmt.Errorf("unable to determine region: %s", err)
	}

	sess, err := session.NewSession()
	if err != nil {
		return nil, err
	}

	// Re-create client for bucket's region, and get the object
	s3client := s3.New(sess, aws.NewConfig().WithRegion(region))

	key := strings.TrimPrefix(s3url.Path, "/")
	out, err := s3client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(s3url.Host),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

func objectRegion(uri *url.URL) (string, error) {
	sess, err := session.NewSession()
	if err != nil {
		return "", err
	}

	s3client := s3.New(sess, aws.NewConfig().WithRegion(defaultRegion))

	// Discover the region that this bucket is located in
	bucketLocOutput, err := s3client.GetBucketLocation(&s3.GetBucketLocationInput{
		Bucket: aws.String(uri.Host),
	})
	if err != nil {
		return "", err
	}

	if bucketLocOutput.LocationConstraint == nil || *bucketLocOutput.LocationConstraint == "" {
		return "us-east-1", nil
	}
	return *bucketLocOutput.LocationConstraint, nil
}
