/*
Package scheme holds the coefficient tensors of a matrix multiplication
scheme and the dimensions they are indexed by.

A scheme for multiplying an aRows×aCols matrix A by an aCols×bCols matrix B
using r products is given by three tensors. For each product k, alpha
(the F coefficients) selects a linear combination of A entries, beta (the G
coefficients) one of B entries, and gamma (the D coefficients) tells how the
product contributes to every entry of the result C = A·B.

The same Scheme type stores both modulo-2 schemes (every value 0 or 1) and
lifted schemes (values -1, 0 or +1).

Schemes are read from and written to the Bini text format:

	# comments start with a hash sign
	Bini 2 2 2 7
	product Gamma Alpha Beta
	  1 ;  1  0  0  1 ;  1  0  0  1 ;  1  0  0  1
	  2 ;  0  0  1 -1 ;  0  0  1  1 ;  1  0  0  0
	...

Each value line lists, for one 1-based product index, the gamma, alpha and
beta coefficients in row-major order.
*/
package scheme
