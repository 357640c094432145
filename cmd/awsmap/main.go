// awsmap - map and inventory AWS resources across services and regions.
package main

func main() {
	Execute()
}
