package awsutil

import "flag"

var awsTests bool

func init() {
	flag.BoolVar(&awsTests, "aws", false, "run tests that rely on AWS connectivity")
}
