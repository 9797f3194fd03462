/*
Package clipper computes CSS clip-path geometries (circles, ellipses, insets and
polygon templates like stars or hearts) out of a small set of parameters: a shape,
a size, an anchor point and a rotation, all expressed as percentages of the clipped element.

A Clipper holds the parameters of one render target and publishes the computed
boundary on every change. Parameter changes can be tweened over time with an
ease-out cubic curve driven by a frame scheduler.

The render targets shipped with the package are the StyleTarget, producing inline
CSS declarations, and the MaskTarget, cutting a raster image with the boundary.
The package also provides a command line interface, supporting various flags for clipping
still images and exporting animated GIFs. To check the supported commands type:

	$ clipper --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"fmt"

		"github.com/esimov/clipper"
	)

	func main() {
		target := clipper.NewStyleTarget("avatar")
		c, err := clipper.New(target, clipper.Patch{}.WithShape(clipper.Star))
		if err != nil {
			fmt.Printf("Error creating the clipper: %s", err.Error())
			return
		}
		c.SetRotation(45)

		fmt.Println(target.CSS())
	}
*/
package clipper
